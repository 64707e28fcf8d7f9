package normalize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	tests := []struct {
		aliases map[string]string
		name    string
		input   string
		want    string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "AMAZON.COM*PURCHASE #1234",
			want:  "amazon com purchase 1234",
		},
		{
			name:  "collapses whitespace runs",
			input: "uber   \t  trip\n\nhelp",
			want:  "uber trip help",
		},
		{
			name:  "empty input yields empty output",
			input: "",
			want:  "",
		},
		{
			name:  "punctuation only yields empty output",
			input: "***---!!!",
			want:  "",
		},
		{
			name:    "alias substitution after cleaning",
			aliases: map[string]string{"amzn mktp": "amazon"},
			input:   "AMZN Mktp US*1A2B3C",
			want:    "amazon us 1a2b3c",
		},
		{
			name: "longest alias wins over embedded shorter alias",
			aliases: map[string]string{
				"amzn":      "amazon",
				"amzn mktp": "amazon marketplace",
			},
			input: "AMZN MKTP US*1A2B3C",
			want:  "amazon marketplace us 1a2b3c",
		},
		{
			name:    "alias not present leaves text unchanged",
			aliases: map[string]string{"walmart": "wal mart"},
			input:   "Target Store 123",
			want:    "target store 123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.aliases)
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := New(map[string]string{"amzn mktp": "amazon"})

	inputs := []string{
		"AMZN Mktp US*1A2B3C",
		"Starbucks Coffee #123",
		"  spaced   out  ",
		"",
	}
	for _, input := range inputs {
		once := n.Normalize(input)
		assert.Equal(t, once, n.Normalize(once), "normalizing twice changed %q", input)
	}
}

func TestNormalizer_NormalizeAll(t *testing.T) {
	n := New(nil)
	got := n.NormalizeAll([]string{"UBER *TRIP", "LYFT RIDE"})
	assert.Equal(t, []string{"uber trip", "lyft ride"}, got)
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields empty normalizer", func(t *testing.T) {
		n, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)
		assert.Equal(t, "starbucks 123", n.Normalize("STARBUCKS #123"))
	})

	t.Run("empty path yields empty normalizer", func(t *testing.T) {
		n, err := Load("")
		require.NoError(t, err)
		assert.NotNil(t, n)
	})

	t.Run("valid file is applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.json")
		data, err := json.Marshal(map[string]string{"sbux": "starbucks"})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o600))

		n, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "starbucks downtown", n.Normalize("SBUX Downtown"))
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
