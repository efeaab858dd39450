package handlers

import (
	"strings"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InvitesHandler struct {
	Invites *services.InviteService
	Audit   *services.AuditService
}

func NewInvitesHandler(invites *services.InviteService, audit *services.AuditService) *InvitesHandler {
	return &InvitesHandler{Invites: invites, Audit: audit}
}

type issueInviteRequest struct {
	Email string `json:"email"`
}

func (r issueInviteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
	)
}

type inviteResponse struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	Email     *string   `json:"email"`
	InviteURL string    `json:"inviteUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type acceptResponse struct {
	Message       string       `json:"message"`
	AlreadyMember bool         `json:"alreadyMember"`
	Group         models.Group `json:"group"`
}

// Issue creates an invite link for a group the caller belongs to. The body
// is optional.
func (h *InvitesHandler) Issue(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var req issueInviteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return utils.ValidationError(c, err)
	}

	issued, err := h.Invites.Issue(c.UserContext(), groupID, currentUser.ID, req.Email)
	if err != nil {
		return serviceError(c, err, "invite_issue_failed", "failed creating invite")
	}

	logger.InfoWithUser(currentUser.ID.String(), "invite_issued", map[string]interface{}{
		"group_id":   groupID.String(),
		"invite_id":  issued.Invite.ID.String(),
		"expires_at": issued.Invite.ExpiresAt,
	})
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "invite.issue",
		ResourceType: "group",
		ResourceID:   &groupID,
		Details:      map[string]interface{}{"invite_id": issued.Invite.ID.String()},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"invite": inviteResponse{
			ID:        issued.Invite.ID,
			Token:     issued.Invite.Token,
			Email:     issued.Invite.Email,
			InviteURL: issued.URL,
			ExpiresAt: issued.Invite.ExpiresAt,
		},
	})
}

// Accept redeems an invite for the caller. Unlike register and login, every
// failure is reported.
func (h *InvitesHandler) Accept(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return utils.Error(c, fiber.StatusNotFound, services.ErrInvalidToken.Error())
	}

	res, err := h.Invites.Accept(c.UserContext(), token, currentUser.ID)
	if err != nil {
		logger.WarnWithUser(currentUser.ID.String(), "invite_accept_rejected", map[string]interface{}{
			"reason": err.Error(),
		})
		return serviceError(c, err, "invite_accept_failed", "failed accepting invite")
	}

	message := "Successfully joined group"
	if res.AlreadyMember {
		message = "You are already a member of this group"
	} else {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &currentUser.ID,
			Action:       "invite.accept",
			ResourceType: "group",
			ResourceID:   &res.Group.ID,
			IPAddress:    c.IP(),
			RequestID:    getRequestID(c),
		})
	}

	return utils.Success(c, fiber.StatusOK, acceptResponse{
		Message:       message,
		AlreadyMember: res.AlreadyMember,
		Group:         res.Group,
	})
}
