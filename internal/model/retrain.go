package model

import "time"

// RetrainMode selects how stored feedback is folded into the model.
type RetrainMode string

// Retrain mode constants.
const (
	RetrainFull        RetrainMode = "full"
	RetrainIncremental RetrainMode = "incremental"
)

// RetrainTarget selects which model a retrain applies to. Only the primary
// model accepts retraining through this path; the secondary model is trained
// offline.
type RetrainTarget string

// Retrain target constants.
const (
	TargetPrimary   RetrainTarget = "primary"
	TargetSecondary RetrainTarget = "secondary"
)

// RetrainStatus describes the outcome of a retrain request.
type RetrainStatus string

// Retrain status constants.
const (
	RetrainStarted  RetrainStatus = "started"
	RetrainComplete RetrainStatus = "complete"
	RetrainSkipped  RetrainStatus = "skipped"
	RetrainError    RetrainStatus = "error"
)

// RetrainResult is the structured outcome of a retrain operation. A failed
// retrain never replaces the currently serving model.
type RetrainResult struct {
	Status      RetrainStatus `json:"status"`
	Detail      string        `json:"detail"`
	SamplesUsed int           `json:"samples_used"`
}

// RetrainJob tracks a single retrain run, including background runs, so that
// a "started" response has a matching completion signal.
type RetrainJob struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Result     *RetrainResult `json:"result,omitempty"`
	Mode       RetrainMode    `json:"mode"`
	Status     RetrainStatus  `json:"status"`
	ID         int64          `json:"id"`
}
