package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"transferdash/internal/config"
)

func TestLoadEnvFileAndConfig(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	content := "DATA_BACKEND=memory\nREFRESH_INTERVAL=30s\nDATA_CACHE_TTL=10s\n"
	if err := os.WriteFile(env, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"DATA_BACKEND", "REFRESH_INTERVAL", "DATA_CACHE_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	LoadEnvFile(env)
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig: %v", err)
	}
	if cfg.RefreshInterval != 30*time.Second || cfg.DataCacheTTL != 10*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}

	LoadEnvFile(filepath.Join(dir, "missing.env"))
}

func TestLoadAndValidateConfig_Invalid(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadAndValidateConfig_OverridesApplyBeforeValidation(t *testing.T) {
	t.Setenv("DATA_BACKEND", "sheets")
	for _, k := range []string{"GOOGLE_SPREADSHEET_ID", "GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS"} {
		t.Setenv(k, "")
	}
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "t.db"))

	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("sheets without credentials should fail validation")
	}

	cfg, err := LoadAndValidateConfig(func(c *config.Config) { c.DataBackend = "sqlite" })
	if err != nil {
		t.Fatalf("override to sqlite should validate: %v", err)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("backend = %q", cfg.DataBackend)
	}
}

func TestInitSQLite(t *testing.T) {
	logger := SetupLogger("error", "text")
	repo, err := InitSQLite(logger, filepath.Join(t.TempDir(), "t.db"), time.UTC)
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	defer repo.Close()
}
