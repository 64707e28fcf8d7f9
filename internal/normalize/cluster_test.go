package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips punctuation", input: "UBER *TRIP HELP.UBER.COM", want: "uber trip help uber com"},
		{name: "collapses whitespace", input: "  WHOLE   FOODS  ", want: "whole foods"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestUniqueCleaned(t *testing.T) {
	got := UniqueCleaned([]string{
		"STARBUCKS #123",
		"starbucks #123",
		"UBER TRIP",
		"***",
	})
	assert.Equal(t, []string{"starbucks 123", "uber trip"}, got)
}

func TestClusterMerchants(t *testing.T) {
	merchants := []string{
		"starbucks store 123",
		"starbucks store 456",
		"whole foods market",
	}

	var progress int
	clusters := ClusterMerchants(merchants, func() { progress++ })

	assert.Equal(t, len(merchants), progress)
	assert.Len(t, clusters, 2)

	var starbucks []string
	for _, cluster := range clusters {
		if len(cluster) == 2 {
			starbucks = cluster
		}
	}
	assert.ElementsMatch(t, []string{"starbucks store 123", "starbucks store 456"}, starbucks)
}

func TestGenerateAliasMap(t *testing.T) {
	raw := []string{
		"STARBUCKS STORE #123",
		"STARBUCKS STORE #456",
		"WHOLE FOODS MARKET",
	}

	aliases := GenerateAliasMap(raw, nil)

	// Both variants carry digits, so the canonical is the longest (tied) and
	// lexicographically first member. The other maps onto it.
	assert.Len(t, aliases, 1)
	assert.Equal(t, "starbucks store 123", aliases["starbucks store 456"])
}

func TestPickCanonical(t *testing.T) {
	tests := []struct {
		name    string
		cluster []string
		want    string
	}{
		{
			name:    "digit free preferred",
			cluster: []string{"starbucks 123", "starbucks coffee"},
			want:    "starbucks coffee",
		},
		{
			name:    "longest among digit free",
			cluster: []string{"starbucks", "starbucks coffee"},
			want:    "starbucks coffee",
		},
		{
			name:    "all carry digits falls back to whole cluster",
			cluster: []string{"uber 99", "uber 12"},
			want:    "uber 12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickCanonical(tt.cluster))
		})
	}
}
