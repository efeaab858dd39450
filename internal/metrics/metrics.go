package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Redemption outcomes recorded by InviteRedeemed.
const (
	OutcomeJoined        = "joined"
	OutcomeAlreadyMember = "already_member"
	OutcomeInvalid       = "invalid"
	OutcomeUsed          = "used"
	OutcomeExpired       = "expired"
	OutcomeError         = "error"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	invitesIssued     prometheus.Counter
	inviteRedemptions *prometheus.CounterVec
	sharesCreated     prometheus.Counter
	shareFailures     *prometheus.CounterVec
	photosUploaded    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		invitesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "invites_issued_total",
			Help:      "Group invites issued.",
		}),
		inviteRedemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "invite_redemptions_total",
			Help:      "Invite redemption attempts by entry point and outcome.",
		}, []string{"source", "outcome"}),
		sharesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "auto_shares_created_total",
			Help:      "Shares created by the upload fan-out.",
		}),
		shareFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "auto_share_failures_total",
			Help:      "Fan-out steps that failed and were skipped.",
		}, []string{"stage"}),
		photosUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snapshot",
			Name:      "photos_uploaded_total",
			Help:      "Photos stored.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invitesIssued,
		m.inviteRedemptions,
		m.sharesCreated,
		m.shareFailures,
		m.photosUploaded,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) InviteIssued() {
	if m == nil {
		return
	}
	m.invitesIssued.Inc()
}

func (m *Metrics) InviteRedeemed(source, outcome string) {
	if m == nil {
		return
	}
	m.inviteRedemptions.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) SharesCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sharesCreated.Add(float64(n))
}

func (m *Metrics) ShareFailed(stage string) {
	if m == nil {
		return
	}
	m.shareFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) PhotoUploaded() {
	if m == nil {
		return
	}
	m.photosUploaded.Inc()
}
