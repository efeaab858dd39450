package handlers

import (
	"errors"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/internal/storage"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxSelfieSize = 10 * 1024 * 1024

type AuthHandler struct {
	Users   *services.UserService
	Invites *services.InviteService
	Storage storage.Storage
	Audit   *services.AuditService
	Tokens  *utils.TokenIssuer
}

func NewAuthHandler(users *services.UserService, invites *services.InviteService, store storage.Storage, audit *services.AuditService, tokens *utils.TokenIssuer) *AuthHandler {
	return &AuthHandler{Users: users, Invites: invites, Storage: store, Audit: audit, Tokens: tokens}
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	SelfieURL string    `json:"selfieURL,omitempty"`
}

func newUserResponse(u *models.User) userResponse {
	resp := userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
	if u.SelfiePath != "" {
		resp.SelfieURL = "/api/users/" + u.ID.String() + "/selfie"
	}
	return resp
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type registerRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	InviteToken string `json:"inviteToken"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	InviteToken string `json:"inviteToken"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func contentTypeOf(fh *multipart.FileHeader) string {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
			return byExt
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType
}

// Register takes a multipart form with a required selfie. An invite token,
// when present, is redeemed on a best-effort basis.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	req := registerRequest{
		Email:       models.NormalizeEmail(c.FormValue("email")),
		Name:        strings.TrimSpace(c.FormValue("name")),
		Password:    c.FormValue("password"),
		InviteToken: strings.TrimSpace(c.FormValue("inviteToken")),
	}
	if err := req.Validate(); err != nil {
		return utils.ValidationError(c, err)
	}

	selfie, err := c.FormFile("selfie")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "selfie is required")
	}
	if selfie.Size > maxSelfieSize {
		return utils.Error(c, fiber.StatusBadRequest, "selfie must be 10MB or smaller")
	}

	ctx := c.UserContext()
	taken, err := h.Users.EmailTaken(ctx, req.Email)
	if err != nil {
		return serviceError(c, err, "register_lookup_failed", "failed creating account")
	}
	if taken {
		return utils.Error(c, fiber.StatusConflict, services.ErrEmailTaken.Error())
	}

	userID := uuid.New()
	objectName := storage.ObjectName("selfies", userID, selfie.Filename)
	stream, err := selfie.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading selfie")
	}
	defer stream.Close()
	if err := h.Storage.Upload(ctx, objectName, stream, selfie.Size, contentTypeOf(selfie)); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing selfie")
	}

	user, err := h.Users.Register(ctx, services.NewUser{
		ID:         userID,
		Email:      req.Email,
		Name:       req.Name,
		Password:   req.Password,
		SelfiePath: objectName,
	})
	if err != nil {
		_ = h.Storage.Delete(ctx, objectName)
		return serviceError(c, err, "register_failed", "failed creating account")
	}

	h.Invites.RedeemQuietly(ctx, services.SourceRegister, req.InviteToken, user.ID)

	token, err := h.Tokens.Generate(user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"email":       user.Email,
		"with_invite": req.InviteToken != "",
	})
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "user.register",
		ResourceType: "user",
		ResourceID:   &user.ID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, authResponse{Token: token, User: newUserResponse(user)})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return utils.ValidationError(c, err)
	}

	ctx := c.UserContext()
	user, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.Warn("login_failed", map[string]interface{}{
				"email": models.NormalizeEmail(req.Email),
				"ip":    c.IP(),
			})
		}
		return serviceError(c, err, "login_lookup_failed", "failed signing in")
	}

	h.Invites.RedeemQuietly(ctx, services.SourceLogin, strings.TrimSpace(req.InviteToken), user.ID)

	token, err := h.Tokens.Generate(user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "user.login",
		ResourceType: "user",
		ResourceID:   &user.ID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, authResponse{Token: token, User: newUserResponse(user)})
}
