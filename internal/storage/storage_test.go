package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mayur-HT/Snapshot/internal/config"
	"github.com/google/uuid"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	if err := store.Ensure(ctx); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	payload := []byte("jpeg bytes")
	if err := store.Upload(ctx, "photos/u1/a.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	rc, err := store.Download(ctx, "photos/u1/a.jpg")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}

	if err := store.Delete(ctx, "photos/u1/a.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Download(ctx, "photos/u1/a.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "photos/u1/a.jpg"); err != nil {
		t.Fatalf("deleting a missing object should be a no-op, got %v", err)
	}
}

func TestLocalRejectsShortWrites(t *testing.T) {
	store := NewLocal(t.TempDir())
	err := store.Upload(context.Background(), "x/y.bin", strings.NewReader("abc"), 10, "application/octet-stream")
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := store.Download(context.Background(), "x/y.bin"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("partial upload must not be visible, got %v", err)
	}
}

func TestLocalStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(filepath.Join(root, "uploads"))
	ctx := context.Background()

	if err := store.Upload(ctx, "../../escape.txt", strings.NewReader("x"), 1, "text/plain"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := store.Download(ctx, "escape.txt"); err != nil {
		t.Fatalf("expected traversal to be clamped under the root, got %v", err)
	}
	if _, err := store.Download(ctx, ""); err == nil {
		t.Fatal("expected empty object name to be rejected")
	}
}

func TestObjectName(t *testing.T) {
	owner := uuid.New()

	name := ObjectName("photos", owner, "Holiday.JPG")
	if !strings.HasPrefix(name, "photos/"+owner.String()+"/") {
		t.Fatalf("unexpected prefix: %s", name)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("expected lower-cased extension: %s", name)
	}
	if ObjectName("photos", owner, "Holiday.JPG") == name {
		t.Fatal("expected unique object names")
	}
	if strings.Contains(ObjectName("selfies", owner, `..\..\evil`), "..") {
		t.Fatal("client path segments must not leak into object names")
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageLocal, UploadDir: t.TempDir()}}
	store, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", store)
	}

	cfg.Storage.Driver = "ftp"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
