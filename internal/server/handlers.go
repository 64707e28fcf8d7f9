package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

type predictRequest struct {
	Meta map[string]any `json:"meta,omitempty"`
	Text string         `json:"text"`
}

type predictResponse struct {
	Category    string          `json:"category"`
	ModelUsed   model.Source    `json:"model_used"`
	Explanation model.Rationale `json:"explanation"`
	Confidence  float64         `json:"confidence"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	prediction, err := s.engine.Predict(r.Context(), req.Text, req.Meta)
	if err != nil {
		if common.IsRetryable(err) {
			writeError(w, http.StatusServiceUnavailable, "no model available; train or retrain first")
			return
		}
		s.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Category:    prediction.Label,
		Confidence:  prediction.Confidence,
		Explanation: prediction.Rationale,
		ModelUsed:   prediction.ModelUsed,
	})
}

func (s *Server) handleModelStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

type feedbackRequest struct {
	Text         string `json:"text"`
	CorrectLabel string `json:"correct_label"`
	UserID       string `json:"user_id,omitempty"`
}

type feedbackResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if strings.TrimSpace(req.CorrectLabel) == "" {
		writeError(w, http.StatusBadRequest, "correct_label must not be empty")
		return
	}

	id, err := s.store.SaveFeedback(r.Context(), req.Text, req.CorrectLabel, req.UserID)
	if err != nil {
		s.logger.Error("failed to save feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save feedback")
		return
	}

	writeJSON(w, http.StatusCreated, feedbackResponse{
		ID:      id,
		Message: "feedback saved",
	})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	records, err := s.store.ListFeedback(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	if records == nil {
		records = []model.FeedbackRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleFeedbackCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountFeedback(r.Context())
	if err != nil {
		s.logger.Error("failed to count feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"total_feedback": count})
}

func (s *Server) handleClearFeedback(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearFeedback(r.Context()); err != nil {
		s.logger.Error("failed to clear feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "all feedback cleared"})
}

type retrainRequest struct {
	Mode   model.RetrainMode   `json:"mode"`
	Target model.RetrainTarget `json:"model"`
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	req := retrainRequest{Mode: model.RetrainFull, Target: model.TargetPrimary}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	switch req.Mode {
	case model.RetrainFull, model.RetrainIncremental:
	default:
		writeError(w, http.StatusBadRequest, "mode must be \"full\" or \"incremental\"")
		return
	}
	if req.Target != model.TargetPrimary {
		writeError(w, http.StatusBadRequest, "only the primary model accepts retraining via this API")
		return
	}

	result, err := s.engine.Retrain(r.Context(), req.Mode, req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type retrainStatusResponse struct {
	LastJob         *model.RetrainJob `json:"last_job,omitempty"`
	SupportedModes  []string          `json:"supported_modes"`
	SupportedModels []string          `json:"supported_models"`
	SyncMode        bool              `json:"sync_mode"`
}

func (s *Server) handleRetrainStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, retrainStatusResponse{
		SupportedModes:  []string{string(model.RetrainFull), string(model.RetrainIncremental)},
		SupportedModels: []string{string(model.TargetPrimary)},
		SyncMode:        s.engine.SyncRetrain(),
		LastJob:         s.engine.LastRetrainJob(),
	})
}
