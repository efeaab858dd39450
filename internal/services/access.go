package services

import (
	"context"
	"errors"

	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessService answers "may this user see or change that group/photo".
// A group the caller cannot see is reported exactly like a missing one.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// MemberGroup returns the group when userID is its owner or a member.
func (a *AccessService) MemberGroup(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	return memberGroup(a.DB.WithContext(ctx), groupID, userID)
}

// OwnedGroup returns the group only when userID owns it.
func (a *AccessService) OwnedGroup(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := a.DB.WithContext(ctx).First(&group, "id = ? AND owner_id = ?", groupID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotOwner
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (a *AccessService) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return isMember(a.DB.WithContext(ctx), groupID, userID)
}

// Photo returns the photo when userID owns it or has been shared it.
func (a *AccessService) Photo(ctx context.Context, photoID, userID uuid.UUID) (*models.Photo, error) {
	db := a.DB.WithContext(ctx)

	var photo models.Photo
	err := db.First(&photo, "id = ?", photoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	if photo.OwnerID == userID {
		return &photo, nil
	}

	var count int64
	if err := db.Model(&models.Share{}).
		Where("photo_id = ? AND to_user_id = ?", photoID, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPhotoNotFound
	}
	return &photo, nil
}

// SharesGroup reports whether a and b are both in at least one group.
func (a *AccessService) SharesGroup(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	if userA == userB {
		return true, nil
	}
	db := a.DB.WithContext(ctx)
	groupsOfB := db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", userB)

	var count int64
	err := db.Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id IN (?)", userA, groupsOfB).
		Count(&count).Error
	return count > 0, err
}

func memberGroup(db *gorm.DB, groupID, userID uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := db.First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if group.OwnerID == userID {
		return &group, nil
	}

	ok, err := isMember(db, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGroupNotFound
	}
	return &group, nil
}

func isMember(db *gorm.DB, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
