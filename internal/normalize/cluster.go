package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// similarityThreshold is the minimum token-sorted similarity for two merchant
// strings to be considered the same merchant.
const similarityThreshold = 0.8

var digits = regexp.MustCompile(`\d`)

// CleanText applies the punctuation and whitespace portion of normalization
// without alias substitution. Used when building the alias map itself.
func CleanText(text string) string {
	t := strings.ToLower(text)
	t = nonAlphanumeric.ReplaceAllString(t, " ")
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(t, " "))
}

// tokenSort rearranges the words of a string into sorted order so that
// similarity is insensitive to token ordering.
func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// ClusterMerchants groups cleaned merchant strings by fuzzy similarity.
// onProgress, if non-nil, is invoked once per processed merchant.
func ClusterMerchants(merchants []string, onProgress func()) [][]string {
	lev := metrics.NewLevenshtein()
	sorted := make([]string, len(merchants))
	for i, m := range merchants {
		sorted[i] = tokenSort(m)
	}

	var clusters [][]string
	used := make(map[int]bool, len(merchants))

	for i := range merchants {
		if onProgress != nil {
			onProgress()
		}
		if used[i] {
			continue
		}

		cluster := []string{merchants[i]}
		for j := range merchants {
			if j == i || used[j] {
				continue
			}
			if strutil.Similarity(sorted[i], sorted[j], lev) >= similarityThreshold {
				cluster = append(cluster, merchants[j])
				used[j] = true
			}
		}
		used[i] = true
		clusters = append(clusters, cluster)
	}

	return clusters
}

// pickCanonical chooses the representative string for a cluster: digit-free
// candidates are preferred, then the longest, then lexicographic order.
func pickCanonical(cluster []string) string {
	candidates := make([]string, 0, len(cluster))
	for _, c := range cluster {
		if !digits.MatchString(c) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		candidates = cluster
	}

	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

// UniqueCleaned returns the distinct cleaned merchant strings from rawTexts,
// sorted for deterministic clustering.
func UniqueCleaned(rawTexts []string) []string {
	seen := make(map[string]bool, len(rawTexts))
	var merchants []string
	for _, t := range rawTexts {
		cleaned := CleanText(t)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		merchants = append(merchants, cleaned)
	}
	sort.Strings(merchants)
	return merchants
}

// GenerateAliasMap clusters raw merchant strings and maps every non-canonical
// cluster member to its canonical form. This runs offline; the result is the
// read-only alias map loaded at process start.
func GenerateAliasMap(rawTexts []string, onProgress func()) map[string]string {
	merchants := UniqueCleaned(rawTexts)

	aliasMap := make(map[string]string)
	for _, cluster := range ClusterMerchants(merchants, onProgress) {
		canonical := pickCanonical(cluster)
		for _, alias := range cluster {
			if alias != canonical {
				aliasMap[alias] = canonical
			}
		}
	}
	return aliasMap
}
