package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	version, err := store.schemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.SaveFeedback(ctx, "STARBUCKS #123", "Coffee & Beverages", "")
	require.NoError(t, err)

	// Running migrations again must not touch existing data.
	require.NoError(t, store.Migrate(ctx))

	count, err := store.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMigrate_VersionsAreOrdered(t *testing.T) {
	last := 0
	for _, m := range migrations {
		assert.Greater(t, m.Version, last, "migration versions must strictly increase")
		assert.NotEmpty(t, m.Description)
		last = m.Version
	}
	assert.Equal(t, ExpectedSchemaVersion, last)
}
