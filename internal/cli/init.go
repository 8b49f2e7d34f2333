// Package cli holds the startup steps shared by cmd/outreach and
// cmd/outreach-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"outreach/internal/config"
	"outreach/internal/log"
	"outreach/internal/store"
)

// LoadEnvFile loads the .env file for local development. A missing file
// is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at level and makes it the slog
// default.
func SetupLogger(level slog.Level, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     level,
		Component: component,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)
	return logger.WithComponent(component)
}

// LoadConfig reads the environment and runs each check in turn.
func LoadConfig(checks ...func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if errors.Is(ctx.Err(), context.Canceled) {
			logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		}
	}()
	return ctx, stop
}

// ReadyCheck returns a readiness probe for backends that can ping their
// database. Backends that cannot are always ready.
func ReadyCheck(b store.Backend) func(ctx context.Context) error {
	p, ok := b.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("backend ping: %w", err)
		}
		return nil
	}
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}
