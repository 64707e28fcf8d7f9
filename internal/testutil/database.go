// Package testutil provides shared test helpers for the calcbert project.
package testutil

import (
	"context"
	"testing"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/storage"
)

// SetupTestDB creates a new in-memory feedback database with migrations
// applied and cleanup registered.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
