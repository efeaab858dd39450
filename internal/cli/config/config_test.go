package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestConfig_Path(t *testing.T) {
	useTempConfigDir(t)

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() returned error: %v", err)
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir() returned error: %v", err)
	}
	if path != filepath.Join(userConfigDir, dirName, fileName) {
		t.Errorf("unexpected path %s", path)
	}
}

func TestConfig_LoadSaveClear(t *testing.T) {
	useTempConfigDir(t)

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL || cfg.HasToken() {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		if err := Save(&Config{ServerURL: "http://snap.test", Token: "jwt", Email: "a@example.com"}); err != nil {
			t.Fatalf("Save() returned error: %v", err)
		}

		p, _ := Path()
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("expected config file: %v", err)
		}
		if info.Mode().Perm() != filePerms {
			t.Errorf("expected perms %o, got %o", filePerms, info.Mode().Perm())
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != "http://snap.test" || cfg.Token != "jwt" || !cfg.HasToken() {
			t.Fatalf("unexpected config %+v", cfg)
		}
	})

	t.Run("empty server url falls back", func(t *testing.T) {
		if err := Save(&Config{Token: "jwt"}); err != nil {
			t.Fatalf("Save() returned error: %v", err)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL {
			t.Fatalf("expected default url, got %s", cfg.ServerURL)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		if err := Clear(); err != nil {
			t.Fatalf("Clear() returned error: %v", err)
		}
		if err := Clear(); err != nil {
			t.Fatalf("second Clear() returned error: %v", err)
		}
		cfg, _ := Load()
		if cfg.HasToken() {
			t.Fatal("expected token to be gone")
		}
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		p, _ := Path()
		if err := os.WriteFile(p, []byte("{not json"), filePerms); err != nil {
			t.Fatalf("failed writing file: %v", err)
		}
		if _, err := Load(); err == nil {
			t.Fatal("expected error for corrupt config")
		}
	})
}
