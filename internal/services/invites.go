package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const inviteTokenBytes = 32

// Entry points that can redeem an invite.
const (
	SourceAccept   = "accept"
	SourceRegister = "register"
	SourceLogin    = "login"
)

type InviteService struct {
	DB          *gorm.DB
	Access      *AccessService
	Metrics     *metrics.Metrics
	FrontendURL string
	Expiry      time.Duration
	Now         func() time.Time
}

func NewInviteService(db *gorm.DB, access *AccessService, m *metrics.Metrics, frontendURL string, expiry time.Duration) *InviteService {
	return &InviteService{
		DB:          db,
		Access:      access,
		Metrics:     m,
		FrontendURL: frontendURL,
		Expiry:      expiry,
		Now:         time.Now,
	}
}

type IssuedInvite struct {
	Invite models.GroupInvite
	URL    string
}

type ConsumeResult struct {
	AlreadyMember bool
	Group         models.Group
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *InviteService) URL(token string) string {
	return fmt.Sprintf("%s/groups/accept/%s", s.FrontendURL, token)
}

// Issue mints a single-use invite for a group the issuer belongs to.
// email is optional and informational only.
func (s *InviteService) Issue(ctx context.Context, groupID, issuerID uuid.UUID, email string) (*IssuedInvite, error) {
	if _, err := s.Access.MemberGroup(ctx, groupID, issuerID); err != nil {
		return nil, err
	}

	token, err := utils.RandomHex(inviteTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	invite := models.GroupInvite{
		Token:       token,
		GroupID:     groupID,
		InvitedByID: issuerID,
		ExpiresAt:   s.now().Add(s.Expiry),
	}
	if normalized := models.NormalizeEmail(email); normalized != "" {
		invite.Email = &normalized
	}

	if err := s.DB.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, err
	}
	s.Metrics.InviteIssued()

	return &IssuedInvite{Invite: invite, URL: s.URL(token)}, nil
}

// Consume redeems token for userID. The invite is claimed and the membership
// written in one transaction. A consumer replaying its own invite while still
// a member gets AlreadyMember without the invite being touched again.
func (s *InviteService) Consume(ctx context.Context, token string, userID uuid.UUID) (*ConsumeResult, error) {
	var result ConsumeResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.GroupInvite
		err := tx.Preload("Group").First(&invite, "token = ?", token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}

		if invite.Used {
			return replay(tx, &invite, userID, &result)
		}

		now := s.now()
		if invite.Expired(now) {
			return ErrInviteExpired
		}

		claim := tx.Model(&models.GroupInvite{}).
			Where("id = ? AND used = ?", invite.ID, false).
			Updates(map[string]interface{}{
				"used":       true,
				"used_at":    now,
				"used_by_id": userID,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			if err := tx.First(&invite, "id = ?", invite.ID).Error; err != nil {
				return err
			}
			return replay(tx, &invite, userID, &result)
		}

		membership := models.GroupMembership{
			GroupID: invite.GroupID,
			UserID:  userID,
			Role:    models.GroupRoleMember,
		}
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership)
		if insert.Error != nil {
			return insert.Error
		}

		result.AlreadyMember = insert.RowsAffected == 0
		result.Group = invite.Group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func replay(tx *gorm.DB, invite *models.GroupInvite, userID uuid.UUID, result *ConsumeResult) error {
	if !invite.UsedBy(userID) {
		return ErrInviteUsed
	}
	member, err := isMember(tx, invite.GroupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrInviteUsed
	}
	result.AlreadyMember = true
	result.Group = invite.Group
	return nil
}

// Accept is the explicit accept path: errors are returned to the caller.
func (s *InviteService) Accept(ctx context.Context, token string, userID uuid.UUID) (*ConsumeResult, error) {
	res, err := s.Consume(ctx, token, userID)
	s.Metrics.InviteRedeemed(SourceAccept, outcome(res, err))
	return res, err
}

// RedeemQuietly is used by register and login. Failures are logged and
// counted, never returned: the session is issued either way.
func (s *InviteService) RedeemQuietly(ctx context.Context, source, token string, userID uuid.UUID) *ConsumeResult {
	if token == "" {
		return nil
	}

	res, err := s.Consume(ctx, token, userID)
	s.Metrics.InviteRedeemed(source, outcome(res, err))
	if err != nil {
		logger.WarnWithUser(userID.String(), "invite_redeem_skipped", map[string]interface{}{
			"source": source,
			"reason": err.Error(),
		})
		return nil
	}

	logger.InfoWithUser(userID.String(), "invite_redeemed", map[string]interface{}{
		"source":         source,
		"group_id":       res.Group.ID.String(),
		"already_member": res.AlreadyMember,
	})
	return res
}

func outcome(res *ConsumeResult, err error) string {
	switch {
	case err == nil && res.AlreadyMember:
		return metrics.OutcomeAlreadyMember
	case err == nil:
		return metrics.OutcomeJoined
	case errors.Is(err, ErrInvalidToken):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrInviteUsed):
		return metrics.OutcomeUsed
	case errors.Is(err, ErrInviteExpired):
		return metrics.OutcomeExpired
	default:
		return metrics.OutcomeError
	}
}
