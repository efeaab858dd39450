package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mayur-HT/Snapshot/pkg/logger"
)

var ErrObjectNotFound = errors.New("object not found")

// Local stores objects as files below a root directory.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) resolve(objectName string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(objectName))
	full := filepath.Join(l.root, cleaned)
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return full, nil
}

func (l *Local) Ensure(_ context.Context) error {
	return os.MkdirAll(l.root, 0o755)
}

func (l *Local) Upload(_ context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	full, err := l.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size >= 0 && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), full)
	}
	if err != nil {
		logger.Error("local_upload_failed", err, map[string]interface{}{
			"object_name":  objectName,
			"size":         size,
			"content_type": contentType,
		})
		return err
	}
	return nil
}

func (l *Local) Download(_ context.Context, objectName string) (io.ReadCloser, error) {
	full, err := l.resolve(objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (l *Local) Delete(_ context.Context, objectName string) error {
	full, err := l.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("local_delete_failed", err, map[string]interface{}{"object_name": objectName})
		return err
	}
	return nil
}
