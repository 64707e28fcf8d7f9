package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/classifier"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/dataset"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// Retrain folds stored feedback into the primary model. In synchronous mode
// the caller blocks until completion and receives the full result; otherwise
// the run continues in the background and its outcome is available through
// LastRetrainJob. A failed retrain leaves the serving model untouched.
func (e *Engine) Retrain(ctx context.Context, mode model.RetrainMode, target model.RetrainTarget) (model.RetrainResult, error) {
	switch mode {
	case model.RetrainFull, model.RetrainIncremental:
	default:
		return model.RetrainResult{}, fmt.Errorf("%w: unknown retrain mode %q", common.ErrInvalidConfig, mode)
	}

	if target != model.TargetPrimary {
		// The secondary model is trained by an external offline process.
		return model.RetrainResult{
			Status: model.RetrainError,
			Detail: "only the primary model accepts retraining via this path",
		}, nil
	}

	if !e.cfg.SyncRetrain {
		job := e.startJob(mode)
		go func() {
			result := e.runRetrain(context.Background(), mode)
			e.finishJob(job.ID, result)
		}()
		return model.RetrainResult{
			Status: model.RetrainStarted,
			Detail: fmt.Sprintf("%s retrain started in background (job %d)", mode, job.ID),
		}, nil
	}

	job := e.startJob(mode)
	result := e.runRetrain(ctx, mode)
	e.finishJob(job.ID, result)
	return result, nil
}

// LastRetrainJob returns a copy of the most recent retrain job, if any.
func (e *Engine) LastRetrainJob() *model.RetrainJob {
	e.jobMu.Lock()
	defer e.jobMu.Unlock()
	if e.lastJob == nil {
		return nil
	}
	job := *e.lastJob
	return &job
}

func (e *Engine) startJob(mode model.RetrainMode) *model.RetrainJob {
	e.jobMu.Lock()
	defer e.jobMu.Unlock()
	e.jobSeq++
	e.lastJob = &model.RetrainJob{
		ID:        e.jobSeq,
		Mode:      mode,
		Status:    model.RetrainStarted,
		StartedAt: time.Now().UTC(),
	}
	return e.lastJob
}

func (e *Engine) finishJob(id int64, result model.RetrainResult) {
	e.jobMu.Lock()
	defer e.jobMu.Unlock()
	if e.lastJob == nil || e.lastJob.ID != id {
		return
	}
	now := time.Now().UTC()
	e.lastJob.Status = result.Status
	e.lastJob.FinishedAt = &now
	e.lastJob.Result = &result
}

// runRetrain executes one retrain. Retrains are serialized; predictions keep
// serving from the current snapshot throughout.
func (e *Engine) runRetrain(ctx context.Context, mode model.RetrainMode) model.RetrainResult {
	e.retrainMu.Lock()
	defer e.retrainMu.Unlock()

	var result model.RetrainResult
	if mode == model.RetrainFull {
		result = e.fullRetrain(ctx)
	} else {
		result = e.incrementalRetrain(ctx)
	}

	if result.Status == model.RetrainError {
		common.LogError(errors.New(result.Detail), "retrain failed", common.Fields{"mode": mode})
	} else {
		common.LogInfo("retrain finished", common.Fields{
			"mode":         mode,
			"status":       result.Status,
			"samples_used": result.SamplesUsed,
		})
	}
	return result
}

// fullRetrain fits a fresh pipeline on the base dataset plus all stored
// feedback, persists it, verifies that reloading yields the same label set,
// and only then publishes the reloaded model.
func (e *Engine) fullRetrain(ctx context.Context) model.RetrainResult {
	base, err := dataset.Load(e.cfg.BaseDatasetPath)
	if err != nil {
		return errorResult("failed to load base dataset: %v", err)
	}

	feedback, err := e.store.ListFeedback(ctx, 0)
	if err != nil {
		return errorResult("failed to read feedback: %v", err)
	}

	// Feedback rows append after base rows, so diagnostics are reproducible.
	texts := make([]string, 0, len(base)+len(feedback))
	labels := make([]string, 0, len(base)+len(feedback))
	for _, s := range base {
		texts = append(texts, e.normalizer.Normalize(s.Text))
		labels = append(labels, s.Label)
	}
	for _, fb := range feedback {
		texts = append(texts, e.normalizer.Normalize(fb.Text))
		labels = append(labels, fb.CorrectLabel)
	}

	pipeline := classifier.NewPipeline()
	if err := pipeline.Fit(texts, labels); err != nil {
		return errorResult("failed to fit model: %v", err)
	}
	if err := pipeline.Save(e.cfg.TFIDFDir); err != nil {
		return errorResult("failed to persist model: %v", err)
	}

	// Round-trip integrity check: a save/load divergence would mean
	// predictions after a restart silently differ from predictions now.
	reloaded := classifier.NewPipeline()
	if err := reloaded.Load(e.cfg.TFIDFDir); err != nil {
		return errorResult("failed to reload persisted model: %v", err)
	}
	if !sameLabelSet(pipeline.Labels(), reloaded.Labels()) {
		return errorResult("%v: trained %d labels, reloaded %d",
			common.ErrLabelMismatch, len(pipeline.Labels()), len(reloaded.Labels()))
	}

	e.tfidf.Store(reloaded)
	return model.RetrainResult{
		Status: model.RetrainComplete,
		Detail: fmt.Sprintf("full retrain completed: %d base + %d feedback samples, %d categories",
			len(base), len(feedback), len(reloaded.Labels())),
		SamplesUsed: len(texts),
	}
}

// incrementalRetrain applies stored feedback to a copy of the current model
// via online updates and publishes the copy once persisted.
func (e *Engine) incrementalRetrain(ctx context.Context) model.RetrainResult {
	feedback, err := e.store.ListFeedback(ctx, 0)
	if err != nil {
		return errorResult("failed to read feedback: %v", err)
	}
	if len(feedback) == 0 {
		return model.RetrainResult{
			Status: model.RetrainSkipped,
			Detail: "no stored feedback to apply",
		}
	}

	current := e.tfidf.Load()
	if current == nil {
		return errorResult("%v: primary model not loaded, run a full retrain first", common.ErrModelNotReady)
	}

	texts := make([]string, len(feedback))
	labels := make([]string, len(feedback))
	for i, fb := range feedback {
		texts[i] = e.normalizer.Normalize(fb.Text)
		labels[i] = fb.CorrectLabel
	}

	// Updates go to a deep copy; readers keep the snapshot they started with.
	updated := current.Clone()
	applied, err := updated.PartialFit(texts, labels)
	if err != nil {
		return errorResult("incremental update failed: %v", err)
	}
	if applied == 0 {
		return model.RetrainResult{
			Status: model.RetrainSkipped,
			Detail: fmt.Sprintf("no feedback matched the known label set (%d submitted)", len(feedback)),
		}
	}

	if err := updated.Save(e.cfg.TFIDFDir); err != nil {
		return errorResult("failed to persist updated model: %v", err)
	}
	e.tfidf.Store(updated)

	return model.RetrainResult{
		Status:      model.RetrainComplete,
		Detail:      fmt.Sprintf("incremental retrain applied %d of %d feedback samples", applied, len(feedback)),
		SamplesUsed: applied,
	}
}

func errorResult(format string, args ...any) model.RetrainResult {
	return model.RetrainResult{
		Status: model.RetrainError,
		Detail: fmt.Sprintf(format, args...),
	}
}

// sameLabelSet compares label sets ignoring order.
func sameLabelSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	copy(as, a)
	copy(bs, b)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
