package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PALDESIGNER_CONFIG_FILE", "APP_HOST", "APP_PORT", "DATABASE_URL",
		"LOG_JSON", "LOG_LEVEL", "PALDESIGNER_HINT_DISCOVERY_FILE", "MAX_IMPORT_ZIP_BYTES",
	} {
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 8080 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxImportZipBytes != defaultMaxImportZipBytes {
		t.Fatalf("expected default max import zip bytes, got %d", cfg.MaxImportZipBytes)
	}
}

func TestLoadRequiresDatabaseURLUnlessAllowed(t *testing.T) {
	clearEnv(t)
	if _, err := Load(false); err == nil {
		t.Fatalf("expected error when DATABASE_URL is unset and not allowed empty")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("APP_HOST", "0.0.0.0")
	os.Setenv("APP_PORT", "9090")
	os.Setenv("DATABASE_URL", "file:test.db")
	defer clearEnv(t)

	cfg, err := Load(false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host != "0.0.0.0" || cfg.Port != 9090 || cfg.DatabaseURL != "file:test.db" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidHost(t *testing.T) {
	clearEnv(t)
	os.Setenv("APP_HOST", "not-an-ip")
	defer clearEnv(t)

	if _, err := Load(true); err == nil {
		t.Fatalf("expected error for non-IP APP_HOST")
	}
}

func TestLoadFileOverlayThenEnvWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	overlayPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(overlayPath, []byte("host: \"10.0.0.1\"\nport: 7000\n"), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}
	os.Setenv("PALDESIGNER_CONFIG_FILE", overlayPath)
	os.Setenv("APP_PORT", "7001") // env should win over file
	defer clearEnv(t)

	cfg, err := Load(true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host != "10.0.0.1" {
		t.Fatalf("expected file overlay host, got %q", cfg.Host)
	}
	if cfg.Port != 7001 {
		t.Fatalf("expected env port to win over file overlay, got %d", cfg.Port)
	}
}

func TestAddrJoinsHostAndPort(t *testing.T) {
	cfg := AppConfig{Host: "127.0.0.1", Port: 8080}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Fatalf("unexpected addr: %q", cfg.Addr())
	}
}
