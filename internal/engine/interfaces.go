// Package engine wires the normalizer, rule engine, classifiers and fusion
// policy into the prediction path, and orchestrates feedback-driven
// retraining.
package engine

import (
	"context"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// FeedbackStore is the persistence contract the engine needs for corrections.
type FeedbackStore interface {
	// SaveFeedback appends a correction and returns its assigned id.
	SaveFeedback(ctx context.Context, text, correctLabel, userID string) (int64, error)
	// ListFeedback returns corrections oldest first; limit 0 means all.
	ListFeedback(ctx context.Context, limit int) ([]model.FeedbackRecord, error)
	// CountFeedback returns the total number of corrections.
	CountFeedback(ctx context.Context) (int, error)
	// ClearFeedback removes all corrections.
	ClearFeedback(ctx context.Context) error
}
