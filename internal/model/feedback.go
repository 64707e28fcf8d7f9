package model

import "time"

// FeedbackRecord represents a user correction for a transaction text.
// Records are immutable once written; they are only removed by an explicit
// bulk clear.
type FeedbackRecord struct {
	CreatedAt    time.Time `json:"created_at"`
	Text         string    `json:"text"`
	CorrectLabel string    `json:"correct_label"`
	UserID       string    `json:"user_id,omitempty"`
	ID           int64     `json:"id"`
}

// TrainingSample is one (text, label) pair used for fitting a classifier.
type TrainingSample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}
