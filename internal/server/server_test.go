package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/classifier"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/engine"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/storage"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/testutil"
)

const testDataset = `transaction_text,category
STARBUCKS STORE #123,Coffee & Beverages
PEETS COFFEE SHOP,Coffee & Beverages
UBER TRIP HELP,Transportation
LYFT RIDE AIRPORT,Transportation
`

// setupServer builds a full engine backed by temp models and an in-memory
// feedback store, and returns the HTTP handler with its store.
func setupServer(t *testing.T) (*Server, *storage.SQLiteStorage) {
	t.Helper()
	dir := t.TempDir()

	datasetPath := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(datasetPath, []byte(testDataset), 0o600))

	texts := []string{"starbucks store 123", "peets coffee shop", "uber trip help", "lyft ride airport"}
	labels := []string{"Coffee & Beverages", "Coffee & Beverages", "Transportation", "Transportation"}

	tfidfDir := filepath.Join(dir, "tfidf")
	pipeline := classifier.NewPipeline()
	require.NoError(t, pipeline.Fit(texts, labels))
	require.NoError(t, pipeline.Save(tfidfDir))

	bayesDir := filepath.Join(dir, "bayes")
	bayes, err := classifier.TrainBayes(texts, labels)
	require.NoError(t, err)
	require.NoError(t, bayes.Save(bayesDir))

	cfg := engine.DefaultConfig()
	cfg.BaseDatasetPath = datasetPath
	cfg.TFIDFDir = tfidfDir
	cfg.BayesDir = bayesDir

	store := testutil.SetupTestDB(t)
	eng, err := engine.New(cfg, store)
	require.NoError(t, err)

	return NewServer(eng, store, nil, slog.Default()), store
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var env struct {
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Success bool            `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, "response was not successful: %s", env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestHandleHealth(t *testing.T) {
	srv, _ := setupServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var data map[string]string
	decodeData(t, rec, &data)
	assert.Equal(t, "ok", data["status"])
}

func TestHandlePredict(t *testing.T) {
	srv, _ := setupServer(t)

	t.Run("rule backed prediction", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/predict", map[string]any{
			"text": "STARBUCKS STORE #456",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Category   string  `json:"category"`
			ModelUsed  string  `json:"model_used"`
			Confidence float64 `json:"confidence"`
		}
		decodeData(t, rec, &resp)
		assert.Equal(t, "Coffee & Beverages", resp.Category)
		assert.Equal(t, "rule", resp.ModelUsed)
		assert.InDelta(t, 0.95, resp.Confidence, 1e-9)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/predict", map[string]any{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/predict", map[string]any{
			"text":       "UBER TRIP",
			"unexpected": true,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleModelStatus(t *testing.T) {
	srv, _ := setupServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/model-status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]bool
	decodeData(t, rec, &status)
	assert.True(t, status["rules"])
	assert.True(t, status["tfidf"])
	assert.True(t, status["bayes"])
}

func TestHandleFeedback(t *testing.T) {
	srv, store := setupServer(t)
	ctx := context.Background()

	t.Run("submit", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/feedback/", map[string]any{
			"text":          "AMZN MKTP US",
			"correct_label": "Online Shopping",
			"user_id":       "alice",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Message string `json:"message"`
			ID      int64  `json:"id"`
		}
		decodeData(t, rec, &resp)
		assert.Positive(t, resp.ID)

		count, err := store.CountFeedback(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("submit without label is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/feedback/", map[string]any{
			"text": "AMZN MKTP US",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/feedback/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []map[string]any
		decodeData(t, rec, &records)
		require.Len(t, records, 1)
	})

	t.Run("list with invalid limit", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/feedback/?limit=banana", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("count", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/feedback/count", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var data map[string]int
		decodeData(t, rec, &data)
		assert.Equal(t, 1, data["total_feedback"])
	})

	t.Run("clear", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/v1/feedback/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		count, err := store.CountFeedback(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("list after clear is an empty array", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/feedback/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []map[string]any
		decodeData(t, rec, &records)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})
}

func TestHandleRetrain(t *testing.T) {
	srv, store := setupServer(t)
	ctx := context.Background()

	t.Run("empty body defaults to full primary", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/retrain/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var result struct {
			Status string `json:"status"`
		}
		decodeData(t, rec, &result)
		assert.Equal(t, "complete", result.Status)
	})

	t.Run("incremental with feedback", func(t *testing.T) {
		_, err := store.SaveFeedback(ctx, "DOWNTOWN SHUTTLE", "Transportation", "")
		require.NoError(t, err)

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/retrain/", map[string]any{
			"mode": "incremental",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var result struct {
			Status      string `json:"status"`
			SamplesUsed int    `json:"samples_used"`
		}
		decodeData(t, rec, &result)
		assert.Equal(t, "complete", result.Status)
		assert.Equal(t, 1, result.SamplesUsed)
	})

	t.Run("invalid mode", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/retrain/", map[string]any{"mode": "sideways"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("secondary model is rejected", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/retrain/", map[string]any{"model": "secondary"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRetrainStatus(t *testing.T) {
	srv, _ := setupServer(t)

	t.Run("before any retrain", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/retrain/status", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var status struct {
			LastJob         *json.RawMessage `json:"last_job"`
			SupportedModes  []string         `json:"supported_modes"`
			SupportedModels []string         `json:"supported_models"`
			SyncMode        bool             `json:"sync_mode"`
		}
		decodeData(t, rec, &status)
		assert.Nil(t, status.LastJob)
		assert.Equal(t, []string{"full", "incremental"}, status.SupportedModes)
		assert.Equal(t, []string{"primary"}, status.SupportedModels)
		assert.True(t, status.SyncMode)
	})

	t.Run("after a retrain", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/retrain/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/api/v1/retrain/status", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var status struct {
			LastJob *struct {
				Mode   string `json:"mode"`
				Status string `json:"status"`
			} `json:"last_job"`
		}
		decodeData(t, rec, &status)
		require.NotNil(t, status.LastJob)
		assert.Equal(t, "full", status.LastJob.Mode)
		assert.Equal(t, "complete", status.LastJob.Status)
	})
}
