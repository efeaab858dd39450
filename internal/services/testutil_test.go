package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/database"
	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServices struct {
	db          *gorm.DB
	metrics     *metrics.Metrics
	access      *AccessService
	memberships *MembershipService
	invites     *InviteService
	sharing     *SharingService
	users       *UserService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Init()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}
	return db
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	db := setupTestDB(t)
	m := metrics.New()
	access := NewAccessService(db)
	return &testServices{
		db:          db,
		metrics:     m,
		access:      access,
		memberships: NewMembershipService(db, access),
		invites:     NewInviteService(db, access, m, "http://frontend.test", 7*24*time.Hour),
		sharing:     NewSharingService(db, m),
		users:       NewUserService(db),
	}
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Name:         name,
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user %s: %v", name, err)
	}
	return user
}

func createGroup(t *testing.T, s *testServices, owner models.User, name string) *models.Group {
	t.Helper()

	group, err := s.memberships.CreateGroup(context.Background(), owner.ID, name)
	if err != nil {
		t.Fatalf("failed creating group %s: %v", name, err)
	}
	return group
}

func addMember(t *testing.T, s *testServices, group *models.Group, actor, target models.User) {
	t.Helper()

	if _, err := s.memberships.AddMember(context.Background(), group.ID, actor.ID, target.Email); err != nil {
		t.Fatalf("failed adding %s to %s: %v", target.Name, group.Name, err)
	}
}

func memberCount(t *testing.T, db *gorm.DB, groupID uuid.UUID) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&count).Error; err != nil {
		t.Fatalf("failed counting members: %v", err)
	}
	return count
}
