package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"DB_SSLMODE", "DB_PATH", "STORAGE_DRIVER", "UPLOAD_DIR", "MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL", "JWT_SECRET",
	"JWT_EXPIRATION_HOURS", "SERVER_PORT", "FRONTEND_URL", "INVITE_EXPIRY", "AUDIT_EXPORT_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, val) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DB.Driver != DriverPostgres {
			t.Errorf("expected postgres driver, got %s", cfg.DB.Driver)
		}
		if cfg.Storage.Driver != StorageLocal || cfg.Storage.UploadDir != "uploads" {
			t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
		}
		if cfg.Server.Port != "3001" {
			t.Errorf("expected port 3001, got %s", cfg.Server.Port)
		}
		if cfg.Server.FrontendURL != "http://localhost:3000" {
			t.Errorf("unexpected frontend url %s", cfg.Server.FrontendURL)
		}
		if cfg.JWT.ExpirationHours != 168 {
			t.Errorf("expected 168h sessions, got %d", cfg.JWT.ExpirationHours)
		}
		if cfg.InviteExpiry() != 7*24*time.Hour {
			t.Errorf("expected 7 day invites, got %s", cfg.InviteExpiry())
		}
		if cfg.AuditExportInterval() != time.Hour {
			t.Errorf("expected 1h export interval, got %s", cfg.AuditExportInterval())
		}
	})

	t.Run("reads environment variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "SQLite")
		t.Setenv("DB_PATH", "/tmp/snap.db")
		t.Setenv("STORAGE_DRIVER", "minio")
		t.Setenv("MINIO_USE_SSL", "true")
		t.Setenv("JWT_SECRET", "my-secret")
		t.Setenv("JWT_EXPIRATION_HOURS", "48")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("FRONTEND_URL", "https://snap.example.com/")
		t.Setenv("INVITE_EXPIRY", "48h")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DB.Driver != DriverSQLite || cfg.DB.Path != "/tmp/snap.db" {
			t.Errorf("unexpected db config: %+v", cfg.DB)
		}
		if cfg.Storage.Driver != StorageMinIO || !cfg.MinIO.UseSSL {
			t.Errorf("unexpected storage config: %+v %+v", cfg.Storage, cfg.MinIO)
		}
		if cfg.JWT.Secret != "my-secret" || cfg.JWT.ExpirationHours != 48 {
			t.Errorf("unexpected jwt config: %+v", cfg.JWT)
		}
		if cfg.Server.Port != "9090" {
			t.Errorf("expected port 9090, got %s", cfg.Server.Port)
		}
		if cfg.Server.FrontendURL != "https://snap.example.com" {
			t.Errorf("expected trailing slash trimmed, got %s", cfg.Server.FrontendURL)
		}
		if cfg.InviteExpiry() != 48*time.Hour {
			t.Errorf("expected 48h invites, got %s", cfg.InviteExpiry())
		}
	})

	t.Run("falls back on malformed numbers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_EXPIRATION_HOURS", "soon")
		t.Setenv("INVITE_EXPIRY", "a week")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.JWT.ExpirationHours != 168 {
			t.Errorf("expected fallback 168, got %d", cfg.JWT.ExpirationHours)
		}
		if cfg.InviteExpiry() != 7*24*time.Hour {
			t.Errorf("expected fallback expiry, got %s", cfg.InviteExpiry())
		}
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "mysql")

		if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DB_DRIVER") {
			t.Fatalf("expected DB_DRIVER error, got %v", err)
		}
	})

	t.Run("rejects empty jwt secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "")

		if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
			t.Fatalf("expected JWT_SECRET error, got %v", err)
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("file values with env overrides", func(t *testing.T) {
		clearEnv(t)
		path := writeConfigFile(t, `
[database]
driver = "sqlite"
path = "from-file.db"

[server]
port = "4000"
frontend_url = "https://file.example.com"

[invite]
expiry = "24h"
`)
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("SERVER_PORT", "5000")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.DB.Driver != DriverSQLite || cfg.DB.Path != "from-file.db" {
			t.Errorf("expected file db config, got %+v", cfg.DB)
		}
		if cfg.Server.Port != "5000" {
			t.Errorf("expected env to override file port, got %s", cfg.Server.Port)
		}
		if cfg.Server.FrontendURL != "https://file.example.com" {
			t.Errorf("expected file frontend url, got %s", cfg.Server.FrontendURL)
		}
		if cfg.InviteExpiry() != 24*time.Hour {
			t.Errorf("expected 24h from file, got %s", cfg.InviteExpiry())
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("malformed file fails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeConfigFile(t, "[server\nport = 1"))

		if _, err := Load(); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("bad duration fails", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeConfigFile(t, "[invite]\nexpiry = \"forever\"\n"))

		if _, err := Load(); err == nil {
			t.Fatal("expected duration error")
		}
	})
}
