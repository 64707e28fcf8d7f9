// Package fusion merges rule-engine and classifier outputs into one final
// decision with an explanation.
package fusion

import (
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// Default thresholds. The override threshold is intentionally low so a
// just-retrained primary model wins quickly over the secondary fallback.
const (
	DefaultRuleThreshold     = 0.9
	DefaultOverrideThreshold = 0.10
)

// DefaultWeights returns the informational weighting map included in every
// rationale. It is audit metadata, not a scored ensemble.
func DefaultWeights() map[string]float64 {
	return map[string]float64{"rule": 0.6, "ml": 0.3, "tfidf": 0.1}
}

// Policy is a deterministic priority chain: rule, then primary classifier
// above the override threshold, then secondary classifier, then primary
// below the threshold, then rule again, then an explicit Unknown sentinel.
// The first satisfied branch wins.
type Policy struct {
	Weights           map[string]float64
	RuleThreshold     float64
	OverrideThreshold float64
}

// NewPolicy creates a fusion policy with the default thresholds and weights.
func NewPolicy() *Policy {
	return &Policy{
		RuleThreshold:     DefaultRuleThreshold,
		OverrideThreshold: DefaultOverrideThreshold,
		Weights:           DefaultWeights(),
	}
}

// Fuse combines the available outputs into one prediction. Any input may be
// nil. Every branch populates rule hits and top tokens, possibly empty, so
// the explanation is never missing a field.
func (p *Policy) Fuse(rule *model.RuleMatch, primary, secondary *model.ClassifierOutput) model.Prediction {
	if rule != nil && rule.Confidence >= p.RuleThreshold {
		return model.Prediction{
			Label:      rule.Label,
			Confidence: rule.Confidence,
			ModelUsed:  model.SourceRule,
			Rationale: model.Rationale{
				RuleHits:  ruleHits(rule),
				TopTokens: topTokens(firstAvailable(primary, secondary)),
				Weighting: p.Weights,
				Notes:     "Rule wins with high confidence.",
			},
		}
	}

	if primary != nil && primary.Confidence >= p.OverrideThreshold {
		return model.Prediction{
			Label:      primary.Label,
			Confidence: primary.Confidence,
			ModelUsed:  model.SourceTFIDF,
			Rationale: model.Rationale{
				RuleHits:  ruleHits(rule),
				TopTokens: topTokens(primary),
				Weighting: p.Weights,
				Notes:     "TF-IDF override (confidence due to recent feedback).",
			},
		}
	}

	if secondary != nil {
		return model.Prediction{
			Label:      secondary.Label,
			Confidence: secondary.Confidence,
			ModelUsed:  model.SourceBayes,
			Rationale: model.Rationale{
				RuleHits:  ruleHits(rule),
				TopTokens: topTokens(secondary),
				Weighting: p.Weights,
				Notes:     "Bayes fallback: no strong rule or TF-IDF match.",
			},
		}
	}

	if primary != nil {
		return model.Prediction{
			Label:      primary.Label,
			Confidence: primary.Confidence,
			ModelUsed:  model.SourceTFIDF,
			Rationale: model.Rationale{
				RuleHits:  ruleHits(rule),
				TopTokens: topTokens(primary),
				Weighting: p.Weights,
				Notes:     "TF-IDF fallback: only available classifier.",
			},
		}
	}

	if rule != nil {
		return model.Prediction{
			Label:      rule.Label,
			Confidence: rule.Confidence,
			ModelUsed:  model.SourceRule,
			Rationale: model.Rationale{
				RuleHits:  ruleHits(rule),
				TopTokens: []model.TokenScore{},
				Weighting: p.Weights,
				Notes:     "Rule fallback: no classifier output available.",
			},
		}
	}

	return model.Prediction{
		Label:      model.UnknownLabel,
		Confidence: 0,
		ModelUsed:  model.SourceNone,
		Rationale: model.Rationale{
			RuleHits:  []string{},
			TopTokens: []model.TokenScore{},
			Weighting: p.Weights,
			Notes:     "No prediction source produced a result.",
		},
	}
}

func ruleHits(rule *model.RuleMatch) []string {
	if rule == nil || len(rule.Matches) == 0 {
		return []string{}
	}
	hits := make([]string, len(rule.Matches))
	copy(hits, rule.Matches)
	return hits
}

func topTokens(out *model.ClassifierOutput) []model.TokenScore {
	if out == nil || len(out.TopTokens) == 0 {
		return []model.TokenScore{}
	}
	tokens := make([]model.TokenScore, len(out.TopTokens))
	copy(tokens, out.TopTokens)
	return tokens
}

func firstAvailable(outputs ...*model.ClassifierOutput) *model.ClassifierOutput {
	for _, o := range outputs {
		if o != nil {
			return o
		}
	}
	return nil
}
