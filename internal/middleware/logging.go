package middleware

import (
	"errors"
	"time"

	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const requestIDKey = "requestID"

// RequestLogger tags the request with an id and logs one line when it ends.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals(requestIDKey, requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		status := statusOf(c, err)
		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"request_body":  logger.RequestBodySummary(c),
			"response_body": logger.ResponseSizeSummary(c),
			"request_id":    requestID,
		}

		userID := logger.UserIDFromLocals(c)
		switch {
		case status >= 500:
			logger.ErrorWithUser(userID, "http_request", err, details)
		case status >= 400:
			logger.WarnWithUser(userID, "http_request", details)
		default:
			logger.InfoWithUser(userID, "http_request", details)
		}
		return err
	}
}

// SecurityLogger records authorization failures and not-found answers,
// which is where probing for other people's groups shows up.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		var reason string
		switch statusOf(c, err) {
		case fiber.StatusUnauthorized:
			reason = "unauthorized"
		case fiber.StatusForbidden:
			reason = "access_denied"
		case fiber.StatusNotFound:
			reason = "not_found"
		default:
			return err
		}

		logger.WarnWithUser(logger.UserIDFromLocals(c), reason, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
		})
		return err
	}
}

// statusOf is the status the client will see. Errors returned up the chain
// have not been rendered by the error handler yet.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// RequestID returns the id RequestLogger assigned, or "".
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
