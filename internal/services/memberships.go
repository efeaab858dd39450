package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipService struct {
	DB     *gorm.DB
	Access *AccessService
}

func NewMembershipService(db *gorm.DB, access *AccessService) *MembershipService {
	return &MembershipService{DB: db, Access: access}
}

func (s *MembershipService) withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").Preload("Memberships").Preload("Memberships.User")
}

// CreateGroup inserts the group and the owner's membership together.
func (s *MembershipService) CreateGroup(ctx context.Context, ownerID uuid.UUID, name string) (*models.Group, error) {
	group := models.Group{Name: strings.TrimSpace(name), OwnerID: ownerID}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMembership{
			GroupID: group.ID,
			UserID:  ownerID,
			Role:    models.GroupRoleOwner,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, group.ID)
}

func (s *MembershipService) load(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := s.withDetails(s.DB.WithContext(ctx)).First(&group, "id = ?", groupID).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups returns every group userID owns or belongs to, newest first.
func (s *MembershipService) ListGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	db := s.DB.WithContext(ctx)
	memberOf := db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", userID)

	var groups []models.Group
	err := s.withDetails(db).
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (s *MembershipService) GetGroup(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	if _, err := s.Access.MemberGroup(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, groupID)
}

// AddMember lets any member add a registered user by email.
func (s *MembershipService) AddMember(ctx context.Context, groupID, actorID uuid.UUID, email string) (*models.GroupMembership, error) {
	if _, err := s.Access.MemberGroup(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var target models.User
	err := db.First(&target, "email = ?", models.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	membership := models.GroupMembership{GroupID: groupID, UserID: target.ID, Role: models.GroupRoleMember}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyMember
	}
	membership.User = target
	return &membership, nil
}

// RemoveMember is owner-only. The owner can never be removed, whoever asks.
func (s *MembershipService) RemoveMember(ctx context.Context, groupID, actorID, targetID uuid.UUID) error {
	group, err := s.Access.OwnedGroup(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if targetID == group.OwnerID {
		return ErrCannotRemoveOwner
	}

	db := s.DB.WithContext(ctx)
	var membership models.GroupMembership
	err = db.First(&membership, "group_id = ? AND user_id = ?", groupID, targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}

	if err := db.Delete(&membership).Error; err != nil {
		if errors.Is(err, models.ErrOwnerMembership) {
			return ErrCannotRemoveOwner
		}
		return err
	}
	return nil
}

// DeleteGroup removes the group with its memberships and invites.
// Shares already granted to members are kept.
func (s *MembershipService) DeleteGroup(ctx context.Context, groupID, actorID uuid.UUID) (*models.Group, error) {
	group, err := s.Access.OwnedGroup(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}
