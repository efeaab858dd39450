package handlers

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/Mayur-HT/Snapshot/internal/metrics"
	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/internal/storage"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxPhotosPerUpload = 20
	maxPhotoSize       = 25 * 1024 * 1024
)

type PhotosHandler struct {
	DB      *gorm.DB
	Access  *services.AccessService
	Sharing *services.SharingService
	Storage storage.Storage
	Metrics *metrics.Metrics
	Audit   *services.AuditService
}

func NewPhotosHandler(db *gorm.DB, access *services.AccessService, sharing *services.SharingService, store storage.Storage, m *metrics.Metrics, audit *services.AuditService) *PhotosHandler {
	return &PhotosHandler{DB: db, Access: access, Sharing: sharing, Storage: store, Metrics: m, Audit: audit}
}

// Upload stores every file under the "photos" field and hands each stored
// photo to the sharing fan-out. A batch is all or nothing: when any file
// fails to store or save, the objects already written are removed and nothing
// is shared.
func (h *PhotosHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid multipart form")
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no photos uploaded")
	}
	if len(files) > maxPhotosPerUpload {
		return utils.Error(c, fiber.StatusBadRequest, fmt.Sprintf("at most %d photos per upload", maxPhotosPerUpload))
	}
	for _, fh := range files {
		if fh.Size > maxPhotoSize {
			return utils.Error(c, fiber.StatusBadRequest, fmt.Sprintf("%s exceeds the 25MB limit", fh.Filename))
		}
	}

	ctx := c.UserContext()
	photos := make([]models.Photo, 0, len(files))
	discard := func() {
		for _, p := range photos {
			if err := h.Storage.Delete(ctx, p.StoragePath); err != nil {
				logger.ErrorWithUser(currentUser.ID.String(), "photo_cleanup_failed", err, map[string]interface{}{
					"object": p.StoragePath,
				})
			}
		}
	}

	for _, fh := range files {
		objectName := storage.ObjectName("photos", currentUser.ID, fh.Filename)
		contentType := contentTypeOf(fh)

		if err := h.store(ctx, fh, objectName, contentType); err != nil {
			logger.ErrorWithUser(currentUser.ID.String(), "photo_store_failed", err, map[string]interface{}{
				"file_name": fh.Filename,
				"stored":    len(photos),
			})
			discard()
			return utils.Error(c, fiber.StatusInternalServerError, "failed storing photo")
		}

		photos = append(photos, models.Photo{
			OwnerID:      currentUser.ID,
			OriginalName: fh.Filename,
			StoragePath:  objectName,
			MimeType:     contentType,
			Size:         fh.Size,
		})
	}

	if err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&photos).Error
	}); err != nil {
		logger.ErrorWithUser(currentUser.ID.String(), "photo_create_failed", err, nil)
		discard()
		return utils.Error(c, fiber.StatusInternalServerError, "failed saving photo")
	}

	for _, photo := range photos {
		h.Metrics.PhotoUploaded()
		h.Sharing.Dispatch(photo)
	}

	logger.InfoWithUser(currentUser.ID.String(), "photos_uploaded", map[string]interface{}{
		"count": len(photos),
	})
	for i := range photos {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &currentUser.ID,
			Action:       "photo.upload",
			ResourceType: "photo",
			ResourceID:   &photos[i].ID,
			Details: map[string]interface{}{
				"file_name": photos[i].OriginalName,
				"file_size": photos[i].Size,
			},
			IPAddress: c.IP(),
			RequestID: getRequestID(c),
		})
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"count":  len(photos),
		"photos": photos,
	})
}

func (h *PhotosHandler) store(ctx context.Context, fh *multipart.FileHeader, objectName, contentType string) error {
	stream, err := fh.Open()
	if err != nil {
		return err
	}
	defer stream.Close()
	return h.Storage.Upload(ctx, objectName, stream, fh.Size, contentType)
}

func (h *PhotosHandler) Mine(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var photos []models.Photo
	if err := h.DB.WithContext(c.UserContext()).
		Where("owner_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&photos).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing photos")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"photos": photos})
}

// Shared lists photos other users have shared with the caller, newest share
// first.
func (h *PhotosHandler) Shared(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var shares []models.Share
	if err := h.DB.WithContext(c.UserContext()).
		Preload("Photo.Owner").
		Where("to_user_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing shared photos")
	}

	photos := make([]models.Photo, 0, len(shares))
	for _, share := range shares {
		photos = append(photos, share.Photo)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"photos": photos})
}

func (h *PhotosHandler) Content(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	photoID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid photo id")
	}

	photo, err := h.Access.Photo(c.UserContext(), photoID, currentUser.ID)
	if err != nil {
		return serviceError(c, err, "photo_load_failed", "failed loading photo")
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", photo.OriginalName))
	return streamObject(c, h.Storage, photo.StoragePath, photo.MimeType, photo.Size)
}
