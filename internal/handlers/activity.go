package handlers

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	defaultActivityLimit = 500
	maxActivityLimit     = 10000
)

// ActivityHandler exposes a user's own audit trail.
type ActivityHandler struct {
	DB *gorm.DB
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{DB: db}
}

func (h *ActivityHandler) Export(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	format := strings.ToLower(strings.TrimSpace(c.Query("format", "json")))
	if format != "csv" && format != "json" {
		return utils.Error(c, fiber.StatusBadRequest, "format must be csv or json")
	}

	limit := c.QueryInt("limit", defaultActivityLimit)
	if limit < 1 {
		return utils.Error(c, fiber.StatusBadRequest, "limit must be positive")
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	var rows []models.AuditLog
	if err := h.DB.WithContext(c.UserContext()).
		Where("user_id = ?", currentUser.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return serviceError(c, err, "activity_export_failed", "failed loading activity")
	}

	if format == "json" {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"activity": rows})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "snapshot-activity.csv"))

	w := csv.NewWriter(c.Response().BodyWriter())
	_ = w.Write([]string{"Timestamp", "Action", "Resource Type", "Resource ID", "IP Address", "Details"})
	for _, row := range rows {
		resourceID := ""
		if row.ResourceID != nil {
			resourceID = row.ResourceID.String()
		}
		_ = w.Write([]string{
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.Action,
			row.ResourceType,
			resourceID,
			row.IPAddress,
			formatDetails(row.Details),
		})
	}
	w.Flush()
	return w.Error()
}

// formatDetails renders k=v pairs in key order.
func formatDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, "; ")
}
