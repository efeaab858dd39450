package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Mayur-HT/Snapshot/internal/config"
	"github.com/google/uuid"
)

// Storage holds uploaded bytes (photos, selfies, audit exports) by object name.
type Storage interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
	Ensure(ctx context.Context) error
}

// New picks the backend named by cfg.Storage.Driver.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMinIO:
		return NewMinIOClient(cfg.MinIO)
	case config.StorageLocal, "":
		return NewLocal(cfg.Storage.UploadDir), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// ObjectName builds "<prefix>/<owner>/<random><ext>". The client supplied
// file name only contributes its lower-cased extension.
func ObjectName(prefix string, ownerID uuid.UUID, originalName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(originalName, "\\", "/")))
	if len(ext) > 10 || strings.ContainsAny(ext, " /") {
		ext = ""
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, uuid.NewString(), ext)
}
