package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/storage"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	auditQueueSize   = 1000
	auditExportBatch = 10000
)

type AuditEntry struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

// AuditService persists audit rows from a buffered queue on one goroutine.
type AuditService struct {
	DB      *gorm.DB
	Storage storage.Storage

	mu     sync.RWMutex
	closed bool
	queue  chan models.AuditLog
	done   chan struct{}
}

func NewAuditService(db *gorm.DB, store storage.Storage) *AuditService {
	s := &AuditService{
		DB:      db,
		Storage: store,
		queue:   make(chan models.AuditLog, auditQueueSize),
		done:    make(chan struct{}),
	}
	go s.processQueue()
	return s
}

// LogAsync never blocks. Entries are dropped with a warning when the queue is
// full or the service is closed.
func (s *AuditService) LogAsync(entry AuditEntry) {
	row := models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		logger.Warn("audit_closed", map[string]interface{}{"action": entry.Action, "dropped": true})
		return
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *AuditService) processQueue() {
	defer close(s.done)
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}

// Close stops accepting entries and waits until the queue is drained.
func (s *AuditService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
}

// StartExporter ships new audit rows to storage as NDJSON every interval
// until ctx is cancelled.
func (s *AuditService) StartExporter(ctx context.Context, interval time.Duration) {
	if s.Storage == nil || interval <= 0 {
		logger.Info("audit_exporter_disabled", nil)
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Export(ctx); err != nil {
					logger.Error("audit_export_failed", err, nil)
				}
			}
		}
	}()

	logger.Info("audit_exporter_started", map[string]interface{}{
		"interval": interval.String(),
	})
}

// Export writes every row newer than the cursor to one object and advances
// the cursor. It returns the number of rows shipped.
func (s *AuditService) Export(ctx context.Context) (int, error) {
	db := s.DB.WithContext(ctx)

	var cursor models.AuditExportCursor
	err := db.First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cursor = models.AuditExportCursor{LastExportAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
		err = db.Create(&cursor).Error
	}
	if err != nil {
		return 0, fmt.Errorf("load export cursor: %w", err)
	}

	var rows []models.AuditLog
	if err := db.Where("created_at > ?", cursor.LastExportAt).
		Order("created_at ASC").
		Limit(auditExportBatch).
		Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("query audit rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return 0, fmt.Errorf("encode audit row %s: %w", row.ID, err)
		}
	}

	now := time.Now().UTC()
	objectName := fmt.Sprintf("audit-logs/%s/%s.ndjson", now.Format("2006/01/02"), now.Format("15-04-05.000"))
	if err := s.Storage.Upload(ctx, objectName, &buf, int64(buf.Len()), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("upload %s: %w", objectName, err)
	}

	if err := db.Model(&cursor).Updates(map[string]interface{}{
		"last_export_at": rows[len(rows)-1].CreatedAt,
		"exported_count": gorm.Expr("exported_count + ?", len(rows)),
	}).Error; err != nil {
		return 0, fmt.Errorf("advance export cursor: %w", err)
	}

	logger.Info("audit_export_success", map[string]interface{}{
		"object_name": objectName,
		"count":       len(rows),
	})
	return len(rows), nil
}
