// Package normalize prepares raw transaction text for rule matching and
// classification, and generates the merchant alias map used to do so.
package normalize

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

type aliasPair struct {
	alias     string
	canonical string
}

// Normalizer cleans transaction text and substitutes known merchant aliases.
// It is read-only after construction and safe for concurrent use.
type Normalizer struct {
	aliases []aliasPair
}

// New creates a Normalizer from an alias map. Aliases are applied longest key
// first so a shorter alias embedded in a longer one never fires incorrectly.
func New(aliases map[string]string) *Normalizer {
	pairs := make([]aliasPair, 0, len(aliases))
	for alias, canonical := range aliases {
		pairs = append(pairs, aliasPair{alias: alias, canonical: canonical})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if len(pairs[i].alias) != len(pairs[j].alias) {
			return len(pairs[i].alias) > len(pairs[j].alias)
		}
		return pairs[i].alias < pairs[j].alias
	})
	return &Normalizer{aliases: pairs}
}

// LoadMap reads a merchant alias map from a JSON file.
func LoadMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias map: %w", err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse alias map %s: %w", path, err)
	}
	return m, nil
}

// Load creates a Normalizer from a JSON alias map file. A missing file is not
// an error; normalization then runs without alias substitution.
func Load(path string) (*Normalizer, error) {
	if path == "" {
		return New(nil), nil
	}
	m, err := LoadMap(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, err
	}
	return New(m), nil
}

// Normalize lowercases the text, strips punctuation, collapses whitespace and
// substitutes merchant aliases. It never fails; empty input yields an empty
// string.
func (n *Normalizer) Normalize(text string) string {
	t := strings.ToLower(text)
	t = nonAlphanumeric.ReplaceAllString(t, " ")
	t = strings.TrimSpace(whitespaceRuns.ReplaceAllString(t, " "))

	for _, p := range n.aliases {
		if strings.Contains(t, p.alias) {
			t = strings.ReplaceAll(t, p.alias, p.canonical)
		}
	}
	return t
}

// NormalizeAll normalizes every string in texts, preserving order.
func (n *Normalizer) NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}
