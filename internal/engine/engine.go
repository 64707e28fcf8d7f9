package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/classifier"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/fusion"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/normalize"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/rules"
)

// Config declares each optional capability explicitly. Components are
// resolved once at startup, never probed per call.
type Config struct {
	BaseDatasetPath   string
	TFIDFDir          string
	BayesDir          string
	AliasMapPath      string
	RuleThreshold     float64
	OverrideThreshold float64
	EnableRules       bool
	EnableTFIDF       bool
	EnableBayes       bool
	EnableFusion      bool
	SyncRetrain       bool
}

// DefaultConfig returns a configuration with every capability enabled,
// synchronous retraining and the default fusion thresholds.
func DefaultConfig() Config {
	return Config{
		RuleThreshold:     fusion.DefaultRuleThreshold,
		OverrideThreshold: fusion.DefaultOverrideThreshold,
		EnableRules:       true,
		EnableTFIDF:       true,
		EnableBayes:       true,
		EnableFusion:      true,
		SyncRetrain:       true,
	}
}

// Engine serves predictions from whatever subset of sources is available and
// hot-swaps classifier models after retraining.
//
// The classifier models are published behind atomic pointers: a prediction
// reads whichever snapshot was current when it began, and retraining builds a
// complete replacement off to the side before a single swap. A reader can
// never observe a half-applied retrain.
type Engine struct {
	normalizer *normalize.Normalizer
	rules      *rules.Engine
	policy     *fusion.Policy
	store      FeedbackStore

	tfidf atomic.Pointer[classifier.Pipeline]
	bayes atomic.Pointer[classifier.BayesModel]

	cfg Config

	jobMu     sync.Mutex
	lastJob   *model.RetrainJob
	jobSeq    int64
	retrainMu sync.Mutex
}

// New resolves the configured capabilities and loads persisted models. A
// model that fails to load leaves its capability unavailable rather than
// failing startup; only a configuration with zero usable sources is an error.
func New(cfg Config, store FeedbackStore) (*Engine, error) {
	normalizer, err := normalize.Load(cfg.AliasMapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias map: %w", err)
	}

	e := &Engine{
		cfg:        cfg,
		store:      store,
		normalizer: normalizer,
	}

	if cfg.EnableRules {
		e.rules = rules.NewEngine()
	}
	if cfg.EnableFusion {
		e.policy = &fusion.Policy{
			RuleThreshold:     cfg.RuleThreshold,
			OverrideThreshold: cfg.OverrideThreshold,
			Weights:           fusion.DefaultWeights(),
		}
	}

	if cfg.EnableTFIDF {
		pipeline := classifier.NewPipeline()
		if err := pipeline.Load(cfg.TFIDFDir); err != nil {
			slog.Warn("TF-IDF model unavailable", "dir", cfg.TFIDFDir, "error", err)
		} else {
			e.tfidf.Store(pipeline)
			slog.Info("TF-IDF model loaded", "dir", cfg.TFIDFDir, "labels", len(pipeline.Labels()))
		}
	}
	if cfg.EnableBayes {
		bayes, err := classifier.LoadBayes(cfg.BayesDir)
		if err != nil {
			slog.Info("Bayes model unavailable", "dir", cfg.BayesDir, "error", err)
		} else {
			e.bayes.Store(bayes)
			slog.Info("Bayes model loaded", "dir", cfg.BayesDir, "labels", len(bayes.Labels()))
		}
	}

	if !e.Status().Available() {
		return nil, common.ErrNoSources
	}
	return e, nil
}

// SyncRetrain reports whether retrain requests run synchronously.
func (e *Engine) SyncRetrain() bool {
	return e.cfg.SyncRetrain
}

// Status reports which prediction sources are currently available.
func (e *Engine) Status() model.ModelStatus {
	return model.ModelStatus{
		Rules:  e.rules != nil,
		TFIDF:  e.tfidf.Load() != nil,
		Bayes:  e.bayes.Load() != nil,
		Fusion: e.policy != nil,
	}
}

// Normalize exposes the engine's text normalization.
func (e *Engine) Normalize(text string) string {
	return e.normalizer.Normalize(text)
}

// Categories returns the rule engine's category names in priority order, or
// nil when rules are disabled.
func (e *Engine) Categories() []string {
	if e.rules == nil {
		return nil
	}
	return e.rules.Categories()
}

// Predict classifies a transaction text using every available source and
// fuses the outputs into one decision. It fails only when no source at all
// can produce an output.
func (e *Engine) Predict(ctx context.Context, text string, meta map[string]any) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}

	normalized := e.normalizer.Normalize(text)

	var ruleOut *model.RuleMatch
	if e.rules != nil {
		ruleOut = e.rules.Apply(normalized, meta)
	}

	var primaryOut *model.ClassifierOutput
	if pipeline := e.tfidf.Load(); pipeline != nil {
		outputs, err := pipeline.Predict([]string{normalized})
		if err != nil {
			slog.Warn("TF-IDF prediction failed", "error", err)
		} else {
			primaryOut = &outputs[0]
		}
	}

	var secondaryOut *model.ClassifierOutput
	if bayes := e.bayes.Load(); bayes != nil {
		outputs := bayes.Predict([]string{normalized})
		secondaryOut = &outputs[0]
	}

	if ruleOut == nil && primaryOut == nil && secondaryOut == nil && e.rules == nil {
		return model.Prediction{}, common.ErrModelNotReady
	}

	if e.policy != nil {
		return e.policy.Fuse(ruleOut, primaryOut, secondaryOut), nil
	}
	return simpleMerge(ruleOut, primaryOut, secondaryOut), nil
}

// simpleMerge is the degraded decision procedure used when the fusion policy
// capability is disabled: prefer a confident rule, then the primary, then the
// secondary classifier.
func simpleMerge(rule *model.RuleMatch, primary, secondary *model.ClassifierOutput) model.Prediction {
	ml := primary
	source := model.SourceTFIDF
	if ml == nil {
		ml = secondary
		source = model.SourceBayes
	}

	switch {
	case rule != nil && (ml == nil || rule.Confidence > fusion.DefaultRuleThreshold):
		hits := make([]string, len(rule.Matches))
		copy(hits, rule.Matches)
		return model.Prediction{
			Label:      rule.Label,
			Confidence: rule.Confidence,
			ModelUsed:  model.SourceRule,
			Rationale:  model.Rationale{RuleHits: hits, TopTokens: []model.TokenScore{}},
		}
	case ml != nil:
		hits := []string{}
		if rule != nil {
			hits = append(hits, rule.Matches...)
		}
		tokens := []model.TokenScore{}
		tokens = append(tokens, ml.TopTokens...)
		return model.Prediction{
			Label:      ml.Label,
			Confidence: ml.Confidence,
			ModelUsed:  source,
			Rationale:  model.Rationale{RuleHits: hits, TopTokens: tokens},
		}
	default:
		return model.Prediction{
			Label:      model.UnknownLabel,
			Confidence: 0,
			ModelUsed:  model.SourceNone,
			Rationale:  model.Rationale{RuleHits: []string{}, TopTokens: []model.TokenScore{}},
		}
	}
}
