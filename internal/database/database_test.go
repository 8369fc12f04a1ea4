package database_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"storyreel/internal/database"
)

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fields.db")

	db, err := database.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	versions, err := db.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	want := []string{"001_field_values", "002_jobs"}
	if !reflect.DeepEqual(versions, want) {
		t.Fatalf("unexpected versions: %v", versions)
	}
	if db.Path() != path {
		t.Fatalf("unexpected path: %q", db.Path())
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := database.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	versions, err = reopened.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions after reopen: %v", err)
	}
	if !reflect.DeepEqual(versions, want) {
		t.Fatalf("migrations should not be re-recorded: %v", versions)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := database.Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
