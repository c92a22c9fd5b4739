// Package cli holds the start-up steps shared by cmd/transferdash and
// cmd/transfer-report.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"transferdash/internal/config"
	"transferdash/internal/log"
	"transferdash/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT values
// and installs it as the slog default. An unknown level falls back to info.
func SetupLogger(level, format string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Format:    format,
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Invalid log level, using info", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads .env files for local development. A missing file is not
// an error.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// LoadAndValidateConfig reads the environment, applies overrides in order and
// validates the result.
func LoadAndValidateConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// InitSQLite opens the SQLite store at dbPath, applying migrations.
func InitSQLite(logger *log.Logger, dbPath string, loc *time.Location) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath, loc)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite at %s: %w", dbPath, err)
	}
	logger.WithComponent(log.ComponentStorage).Info("SQLite store ready", "path", dbPath)
	return repo, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
