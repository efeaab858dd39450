package services

import (
	"context"
	"sync"

	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SharingService fans a freshly uploaded photo out to everyone the owner
// shares a group with.
type SharingService struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewSharingService(db *gorm.DB, m *metrics.Metrics) *SharingService {
	return &SharingService{DB: db, Metrics: m}
}

// Dispatch runs ShareWithGroups in the background. The upload response does
// not wait for it.
func (s *SharingService) Dispatch(photo models.Photo) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.ShareWithGroups(context.Background(), photo)
	}()
}

// Wait blocks until every dispatched fan-out has finished.
func (s *SharingService) Wait() {
	s.wg.Wait()
}

// ShareWithGroups creates the missing shares for photo and returns how many
// were created. A failing group or member is logged and skipped.
func (s *SharingService) ShareWithGroups(ctx context.Context, photo models.Photo) int {
	db := s.DB.WithContext(ctx)
	ownerID := photo.OwnerID

	var groupIDs []uuid.UUID
	memberOf := db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", ownerID)
	if err := db.Model(&models.Group{}).
		Where("owner_id = ? OR id IN (?)", ownerID, memberOf).
		Pluck("id", &groupIDs).Error; err != nil {
		s.Metrics.ShareFailed("groups")
		logger.ErrorWithUser(ownerID.String(), "auto_share_groups_failed", err, map[string]interface{}{
			"photo_id": photo.ID.String(),
		})
		return 0
	}

	created := 0
	for _, groupID := range groupIDs {
		var memberIDs []uuid.UUID
		if err := db.Model(&models.GroupMembership{}).
			Where("group_id = ? AND user_id <> ?", groupID, ownerID).
			Pluck("user_id", &memberIDs).Error; err != nil {
			s.Metrics.ShareFailed("group")
			logger.ErrorWithUser(ownerID.String(), "auto_share_group_failed", err, map[string]interface{}{
				"photo_id": photo.ID.String(),
				"group_id": groupID.String(),
			})
			continue
		}

		for _, memberID := range memberIDs {
			share := models.Share{PhotoID: photo.ID, ToUserID: memberID}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&share)
			if res.Error != nil {
				s.Metrics.ShareFailed("member")
				logger.ErrorWithUser(ownerID.String(), "auto_share_member_failed", res.Error, map[string]interface{}{
					"photo_id":  photo.ID.String(),
					"group_id":  groupID.String(),
					"recipient": memberID.String(),
				})
				continue
			}
			created += int(res.RowsAffected)
		}
	}

	s.Metrics.SharesCreated(created)
	if created > 0 {
		logger.InfoWithUser(ownerID.String(), "auto_share_completed", map[string]interface{}{
			"photo_id": photo.ID.String(),
			"groups":   len(groupIDs),
			"created":  created,
		})
	}
	return created
}
