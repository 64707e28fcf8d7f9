package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, `transaction_text,category
STARBUCKS STORE #123,Coffee & Beverages
UBER TRIP HELP,Transportation
"AMAZON.COM, INC",Online Shopping
`)

	samples, err := Load(path)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, "STARBUCKS STORE #123", samples[0].Text)
	assert.Equal(t, "Coffee & Beverages", samples[0].Label)
	assert.Equal(t, "AMAZON.COM, INC", samples[2].Text)
	assert.Equal(t, "Online Shopping", samples[2].Label)
}

func TestLoad_ColumnOrderIrrelevant(t *testing.T) {
	path := writeCSV(t, `category,extra,transaction_text
Groceries,x,WALMART SUPERCENTER
`)

	samples, err := Load(path)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "WALMART SUPERCENTER", samples[0].Text)
	assert.Equal(t, "Groceries", samples[0].Label)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
		assert.ErrorIs(t, err, common.ErrMissingDataset)
	})

	t.Run("missing columns", func(t *testing.T) {
		path := writeCSV(t, "text,label\nfoo,bar\n")
		_, err := Load(path)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrMissingDataset)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeCSV(t, "transaction_text,category\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, common.ErrNoSamples)
	})

	t.Run("row with too few columns", func(t *testing.T) {
		path := writeCSV(t, "transaction_text,category\nonly-text\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
}
