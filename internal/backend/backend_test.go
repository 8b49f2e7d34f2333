package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"outreach/internal/config"
	"outreach/internal/core"
	"outreach/internal/log"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"mongo without database", Config{Type: MongoBackend, MongoURI: "mongodb://h"}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config accepted")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "a.db"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || !cfg.Type.Shared() || MemoryBackend.Shared() {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	b, err := Open(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "o.db")}, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err := b.AddBudgetItem(ctx, core.BudgetItem{Name: "x", Amount: 10}); err != nil {
		t.Fatal(err)
	}
	items, err := b.ListBudgetItems(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("items %v, %v", items, err)
	}
}
