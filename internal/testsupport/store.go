package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/database"
	"storyreel/internal/fieldstore"
	"storyreel/internal/settings"
)

// MustOpenDatabase opens the field database for cfg and registers cleanup.
func MustOpenDatabase(t testing.TB, cfg *config.Config) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), cfg.FieldsDatabasePath())
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// MustOpenBackend returns a SQLite field backend for cfg.
func MustOpenBackend(t testing.TB, cfg *config.Config) *fieldstore.SQLiteBackend {
	t.Helper()
	return fieldstore.NewSQLiteBackend(MustOpenDatabase(t, cfg))
}

// NewMemoryStores returns settings stores over a fresh in-memory backend.
func NewMemoryStores() (*settings.Stores, *fieldstore.MemoryBackend) {
	backend := fieldstore.NewMemoryBackend()
	return settings.New(backend), backend
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
