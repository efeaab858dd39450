package handlers

import (
	"errors"
	"strings"

	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func getRequestID(c *fiber.Ctx) string {
	return middleware.RequestID(c)
}

// statusFor maps service sentinels onto HTTP statuses. Anything unknown is
// a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrPhotoNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrInviteUsed),
		errors.Is(err, services.ErrInviteExpired):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError renders err in the error envelope. Internal failures are
// logged and replaced by fallback so driver messages never reach clients.
func serviceError(c *fiber.Ctx, err error, action, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.ErrorWithUser(logger.UserIDFromLocals(c), action, err, map[string]interface{}{
			"path":       c.Path(),
			"request_id": getRequestID(c),
		})
		return utils.Error(c, status, fallback)
	}
	return utils.Error(c, status, err.Error())
}
