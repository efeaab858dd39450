package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/database"
	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/internal/storage"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	store   storage.Storage
	metrics *metrics.Metrics
	invites *services.InviteService
	sharing *services.SharingService
}

var (
	testSetupOnce sync.Once
	testTokens    = utils.NewTokenIssuer("test-secret", 24)
)

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating models: %v", err)
	}

	store := storage.NewLocal(t.TempDir())
	m := metrics.New()

	accessService := services.NewAccessService(db)
	membershipService := services.NewMembershipService(db, accessService)
	inviteService := services.NewInviteService(db, accessService, m, "http://localhost:3000", 7*24*time.Hour)
	sharingService := services.NewSharingService(db, m)
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db, store)

	// Runs before the database is closed.
	t.Cleanup(func() {
		sharingService.Wait()
		auditService.Close()
	})

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS("http://localhost:3000"))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	Mount(app, Routes{
		Auth:           NewAuthHandler(userService, inviteService, store, auditService, testTokens),
		Users:          NewUsersHandler(db, accessService, store),
		Groups:         NewGroupsHandler(membershipService, auditService),
		Invites:        NewInvitesHandler(inviteService, auditService),
		Photos:         NewPhotosHandler(db, accessService, sharingService, store, m, auditService),
		Activity:       NewActivityHandler(db),
		AuthMiddleware: middleware.NewAuthMiddleware(db, testTokens),
		Metrics:        m,
	})

	return &testEnv{
		app:     app,
		db:      db,
		store:   store,
		metrics: m,
		invites: inviteService,
		sharing: sharingService,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        models.NormalizeEmail(email),
		Name:         "Test User",
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := testTokens.Generate(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

type formFile struct {
	field   string
	name    string
	content []byte
}

func performMultipartRequest(t *testing.T, app *fiber.App, path string, fields map[string]string, files []formFile, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed writing field %s: %v", key, err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("failed creating form file: %v", err)
		}
		if _, err := part.Write(f.content); err != nil {
			t.Fatalf("failed writing form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	requestHeaders := map[string]string{"Content-Type": writer.FormDataContentType()}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	return performRequest(t, app, http.MethodPost, path, &buf, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %+v", body)
	}
	return data
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func createTestGroup(t *testing.T, env *testEnv, token, name string) string {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups", map[string]any{"name": name}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
	data := dataMap(t, decodeJSONMap(t, resp))
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatalf("expected group id in %+v", data)
	}
	return id
}

func issueTestInvite(t *testing.T, env *testEnv, token, groupID string) string {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, fmt.Sprintf("/api/groups/%s/invite", groupID), nil, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
	invite, _ := dataMap(t, decodeJSONMap(t, resp))["invite"].(map[string]any)
	inviteToken, _ := invite["token"].(string)
	if inviteToken == "" {
		t.Fatalf("expected invite token in %+v", invite)
	}
	return inviteToken
}

func memberCount(t *testing.T, db *gorm.DB, groupID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&n).Error; err != nil {
		t.Fatalf("failed counting members: %v", err)
	}
	return n
}
