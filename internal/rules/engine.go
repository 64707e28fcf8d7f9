// Package rules provides deterministic keyword-based classification of
// transaction text. Rule matches are treated as high-trust by convention.
package rules

import (
	"regexp"
	"strings"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// RuleConfidence is the fixed confidence assigned to any rule match. Rules
// are high-trust and not probabilistically scored.
const RuleConfidence = 0.95

// Category is an ordered set of patterns sharing one label.
type Category struct {
	Name     string
	compiled []*regexp.Regexp
	raw      []string
}

// Engine evaluates categories in a fixed priority order; the first category
// with at least one matching pattern wins.
type Engine struct {
	categories []Category
}

// NewEngine creates a rule engine with the default category table.
func NewEngine() *Engine {
	e := &Engine{}
	for _, c := range defaultCategories {
		for _, p := range c.patterns {
			e.add(c.name, p)
		}
	}
	return e
}

// NewEmptyEngine creates a rule engine with no categories.
func NewEmptyEngine() *Engine {
	return &Engine{}
}

// AddRule appends a pattern to a category, creating the category at the end
// of the priority order if it does not exist yet. Invalid patterns are
// rejected.
func (e *Engine) AddRule(category, pattern string) error {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return err
	}
	for i := range e.categories {
		if e.categories[i].Name == category {
			e.categories[i].compiled = append(e.categories[i].compiled, re)
			e.categories[i].raw = append(e.categories[i].raw, pattern)
			return nil
		}
	}
	e.categories = append(e.categories, Category{
		Name:     category,
		compiled: []*regexp.Regexp{re},
		raw:      []string{pattern},
	})
	return nil
}

func (e *Engine) add(category, pattern string) {
	// Default table patterns are compile-checked by tests.
	_ = e.AddRule(category, pattern)
}

// Categories returns the category names in priority order.
func (e *Engine) Categories() []string {
	names := make([]string, len(e.categories))
	for i, c := range e.categories {
		names[i] = c.Name
	}
	return names
}

// Apply evaluates text against the category table. meta (merchant category
// code, transaction time) is accepted as an extension point and currently
// unused. Returns nil if no category matches.
func (e *Engine) Apply(text string, _ map[string]any) *model.RuleMatch {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	for _, category := range e.categories {
		var matches []string
		for i, re := range category.compiled {
			if re.MatchString(lower) {
				matches = append(matches, displayPattern(category.raw[i]))
			}
		}
		if len(matches) > 0 {
			return &model.RuleMatch{
				Label:      category.Name,
				Confidence: RuleConfidence,
				Matches:    matches,
			}
		}
	}
	return nil
}

// displayPattern strips regex scaffolding so rule hits read as keywords.
func displayPattern(pattern string) string {
	s := strings.ReplaceAll(pattern, `\b`, "")
	return strings.ReplaceAll(s, "?", "")
}
