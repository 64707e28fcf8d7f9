package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

func ruleMatch(label string, confidence float64, matches ...string) *model.RuleMatch {
	return &model.RuleMatch{Label: label, Confidence: confidence, Matches: matches}
}

func classifierOut(label string, confidence float64) *model.ClassifierOutput {
	return &model.ClassifierOutput{
		Label:      label,
		Confidence: confidence,
		Probs:      map[string]float64{label: confidence},
		TopTokens:  []model.TokenScore{{Token: "tok", Score: confidence}},
	}
}

func TestPolicy_Fuse(t *testing.T) {
	tests := []struct {
		rule       *model.RuleMatch
		primary    *model.ClassifierOutput
		secondary  *model.ClassifierOutput
		name       string
		wantLabel  string
		wantSource model.Source
		wantConf   float64
	}{
		{
			name:       "rule wins over everything",
			rule:       ruleMatch("Coffee & Beverages", 0.95, "starbucks"),
			primary:    classifierOut("Transportation", 0.99),
			secondary:  classifierOut("Groceries", 0.99),
			wantLabel:  "Coffee & Beverages",
			wantSource: model.SourceRule,
			wantConf:   0.95,
		},
		{
			name:       "primary override beats secondary",
			primary:    classifierOut("Online Shopping", 0.42),
			secondary:  classifierOut("Groceries", 0.9),
			wantLabel:  "Online Shopping",
			wantSource: model.SourceTFIDF,
			wantConf:   0.42,
		},
		{
			name:       "primary at exactly the override threshold wins",
			primary:    classifierOut("Online Shopping", 0.10),
			secondary:  classifierOut("Groceries", 0.9),
			wantLabel:  "Online Shopping",
			wantSource: model.SourceTFIDF,
			wantConf:   0.10,
		},
		{
			name:       "weak primary falls through to secondary",
			primary:    classifierOut("Online Shopping", 0.05),
			secondary:  classifierOut("Groceries", 0.6),
			wantLabel:  "Groceries",
			wantSource: model.SourceBayes,
			wantConf:   0.6,
		},
		{
			name:       "weak primary is still used when secondary is absent",
			primary:    classifierOut("Online Shopping", 0.05),
			wantLabel:  "Online Shopping",
			wantSource: model.SourceTFIDF,
			wantConf:   0.05,
		},
		{
			name:       "weak rule is a last resort before unknown",
			rule:       ruleMatch("Coffee & Beverages", 0.5, "cafe"),
			wantLabel:  "Coffee & Beverages",
			wantSource: model.SourceRule,
			wantConf:   0.5,
		},
		{
			name:       "no sources yields the unknown sentinel",
			wantLabel:  model.UnknownLabel,
			wantSource: model.SourceNone,
			wantConf:   0,
		},
	}

	policy := NewPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Fuse(tt.rule, tt.primary, tt.secondary)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantSource, got.ModelUsed)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
		})
	}
}

func TestPolicy_Fuse_RationaleAlwaysPopulated(t *testing.T) {
	policy := NewPolicy()

	cases := []struct {
		rule      *model.RuleMatch
		primary   *model.ClassifierOutput
		secondary *model.ClassifierOutput
		name      string
	}{
		{name: "all sources", rule: ruleMatch("Coffee & Beverages", 0.95, "cafe"), primary: classifierOut("Coffee & Beverages", 0.8), secondary: classifierOut("Coffee & Beverages", 0.7)},
		{name: "primary only", primary: classifierOut("Transportation", 0.8)},
		{name: "secondary only", secondary: classifierOut("Groceries", 0.6)},
		{name: "rule only", rule: ruleMatch("Healthcare", 0.95, "cvs")},
		{name: "nothing"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Fuse(tc.rule, tc.primary, tc.secondary)
			require.NotNil(t, got.Rationale.RuleHits)
			require.NotNil(t, got.Rationale.TopTokens)
			assert.NotEmpty(t, got.Rationale.Notes)
			assert.Equal(t, DefaultWeights(), got.Rationale.Weighting)
		})
	}
}

func TestPolicy_Fuse_RuleBelowThresholdStillReported(t *testing.T) {
	policy := NewPolicy()

	got := policy.Fuse(
		ruleMatch("Coffee & Beverages", 0.5, "cafe"),
		classifierOut("Transportation", 0.8),
		nil,
	)

	// The weak rule loses the decision but its hits stay in the rationale.
	assert.Equal(t, "Transportation", got.Label)
	assert.Equal(t, model.SourceTFIDF, got.ModelUsed)
	assert.Equal(t, []string{"cafe"}, got.Rationale.RuleHits)
}

func TestPolicy_Fuse_CustomThresholds(t *testing.T) {
	policy := &Policy{
		RuleThreshold:     0.99,
		OverrideThreshold: 0.5,
		Weights:           DefaultWeights(),
	}

	got := policy.Fuse(
		ruleMatch("Coffee & Beverages", 0.95, "cafe"),
		classifierOut("Transportation", 0.4),
		classifierOut("Groceries", 0.3),
	)

	// Rule misses the raised bar and primary misses the override, so the
	// secondary carries the decision.
	assert.Equal(t, "Groceries", got.Label)
	assert.Equal(t, model.SourceBayes, got.ModelUsed)
}

func TestPolicy_Fuse_CopiesInputs(t *testing.T) {
	policy := NewPolicy()
	rule := ruleMatch("Coffee & Beverages", 0.95, "starbucks")

	got := policy.Fuse(rule, nil, nil)
	rule.Matches[0] = "mutated"

	assert.Equal(t, []string{"starbucks"}, got.Rationale.RuleHits)
}
