// Package model defines the core data structures for the calcbert application.
package model

// Source identifies which underlying model produced a final decision.
type Source string

// Prediction source constants.
const (
	SourceRule  Source = "rule"
	SourceTFIDF Source = "tfidf"
	SourceBayes Source = "bayes"
	SourceNone  Source = "none"
)

// UnknownLabel is the sentinel category returned when no prediction source
// is able to produce a label.
const UnknownLabel = "Unknown"

// TokenScore pairs a token with its contribution to a prediction.
type TokenScore struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
}

// Rationale explains how a prediction was reached. RuleHits and TopTokens are
// always present, possibly empty.
type Rationale struct {
	Weighting map[string]float64 `json:"weighting,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	RuleHits  []string           `json:"rule_hits"`
	TopTokens []TokenScore       `json:"top_tokens"`
}

// Prediction is the final fused decision for a transaction text.
type Prediction struct {
	Label      string    `json:"label"`
	ModelUsed  Source    `json:"model_used"`
	Rationale  Rationale `json:"rationale"`
	Confidence float64   `json:"confidence"`
}

// ClassifierOutput is the raw output of a single statistical classifier for
// one input text, before fusion.
type ClassifierOutput struct {
	Probs      map[string]float64 `json:"probs"`
	Label      string             `json:"label"`
	TopTokens  []TokenScore       `json:"top_tokens"`
	Confidence float64            `json:"confidence"`
}

// RuleMatch is the output of the rule engine for one input text.
type RuleMatch struct {
	Label      string   `json:"label"`
	Matches    []string `json:"matches"`
	Confidence float64  `json:"confidence"`
}

// ModelStatus reports which prediction sources are currently available.
type ModelStatus struct {
	Rules  bool `json:"rules"`
	TFIDF  bool `json:"tfidf"`
	Bayes  bool `json:"bayes"`
	Fusion bool `json:"fusion"`
}

// Available reports whether at least one prediction source is loaded.
func (s ModelStatus) Available() bool {
	return s.Rules || s.TFIDF || s.Bayes
}
