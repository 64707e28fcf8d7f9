package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLiteStorage_Validation(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSaveFeedback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.SaveFeedback(ctx, "AMAZON.COM PURCHASE", "Online Shopping", "alice")
	require.NoError(t, err)
	assert.Positive(t, id)

	second, err := store.SaveFeedback(ctx, "UBER TRIP", "Transportation", "")
	require.NoError(t, err)
	assert.Greater(t, second, id)
}

func TestSaveFeedback_Validation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		text  string
		label string
	}{
		{name: "empty text", text: "", label: "Groceries"},
		{name: "whitespace text", text: "   ", label: "Groceries"},
		{name: "empty label", text: "WALMART", label: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveFeedback(ctx, tt.text, tt.label, "")
			assert.ErrorIs(t, err, ErrEmptyString)
		})
	}

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // passing nil context deliberately
		_, err := store.SaveFeedback(nil, "WALMART", "Groceries", "")
		assert.ErrorIs(t, err, ErrNilContext)
	})
}

func TestListFeedback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		_, err := store.SaveFeedback(ctx, text, "Groceries", "bob")
		require.NoError(t, err)
	}

	t.Run("returns all oldest first", func(t *testing.T) {
		records, err := store.ListFeedback(ctx, 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, rec := range records {
			assert.Equal(t, texts[i], rec.Text)
			assert.Equal(t, "Groceries", rec.CorrectLabel)
			assert.Equal(t, "bob", rec.UserID)
			assert.False(t, rec.CreatedAt.IsZero())
		}
	})

	t.Run("honors limit", func(t *testing.T) {
		records, err := store.ListFeedback(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "first", records[0].Text)
		assert.Equal(t, "second", records[1].Text)
	})

	t.Run("empty table", func(t *testing.T) {
		empty := setupStore(t)
		records, err := empty.ListFeedback(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestListFeedback_NullUser(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.SaveFeedback(ctx, "CVS PHARMACY", "Healthcare", "")
	require.NoError(t, err)

	records, err := store.ListFeedback(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].UserID)
}

func TestCountFeedback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	count, err := store.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 5; i++ {
		_, err := store.SaveFeedback(ctx, "NETFLIX.COM", "Entertainment", "")
		require.NoError(t, err)
	}

	count, err = store.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestClearFeedback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.SaveFeedback(ctx, "SHELL GAS", "Gas & Fuel", "")
	require.NoError(t, err)

	require.NoError(t, store.ClearFeedback(ctx))

	count, err := store.CountFeedback(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecentFeedback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.SaveFeedback(ctx, "older", "Groceries", "")
	require.NoError(t, err)
	_, err = store.SaveFeedback(ctx, "newer", "Groceries", "")
	require.NoError(t, err)

	t.Run("cutoff includes everything", func(t *testing.T) {
		records, err := store.RecentFeedback(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, records, 2)
		// Newest first.
		assert.Equal(t, "newer", records[0].Text)
	})

	t.Run("cutoff in the future excludes everything", func(t *testing.T) {
		records, err := store.RecentFeedback(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
