package handlers

import (
	"errors"
	"io"
	"mime"
	"path"

	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/internal/storage"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UsersHandler struct {
	DB      *gorm.DB
	Access  *services.AccessService
	Storage storage.Storage
}

func NewUsersHandler(db *gorm.DB, access *services.AccessService, store storage.Storage) *UsersHandler {
	return &UsersHandler{DB: db, Access: access, Storage: store}
}

func (h *UsersHandler) Me(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, newUserResponse(currentUser))
}

// Selfie streams a user's selfie to themselves and to anyone they share a
// group with.
func (h *UsersHandler) Selfie(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	ctx := c.UserContext()
	ok, err := h.Access.SharesGroup(ctx, currentUser.ID, userID)
	if err != nil {
		return serviceError(c, err, "selfie_access_failed", "failed loading selfie")
	}
	if !ok {
		return utils.Error(c, fiber.StatusNotFound, services.ErrUserNotFound.Error())
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, services.ErrUserNotFound.Error())
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}
	if user.SelfiePath == "" {
		return utils.Error(c, fiber.StatusNotFound, "selfie not found")
	}

	return streamObject(c, h.Storage, user.SelfiePath, mime.TypeByExtension(path.Ext(user.SelfiePath)), 0)
}

// streamObject writes a stored object to the response. With a known size the
// reader is handed to fasthttp, which closes it once the body is sent.
func streamObject(c *fiber.Ctx, store storage.Storage, objectName, contentType string, size int64) error {
	rc, err := store.Download(c.UserContext(), objectName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "object not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading object")
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")

	if size > 0 {
		return c.SendStream(rc, int(size))
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed reading object")
	}
	return c.Send(data)
}
