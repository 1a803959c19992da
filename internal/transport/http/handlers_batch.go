package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"distress/internal/enrichment"
)

// BatchService runs a parsed gazette batch through the resolution pipeline.
type BatchService interface {
	Run(ctx context.Context, records []enrichment.GazetteRecord) (*enrichment.BatchResult, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler wires the batch endpoints to the enrichment service.
type Handler struct {
	service BatchService
	health  []HealthChecker
	logger  *slog.Logger
}

// NewHandler constructs the HTTP handler. Health checkers are optional;
// nil entries are skipped.
func NewHandler(service BatchService, logger *slog.Logger, health ...HealthChecker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, health: health, logger: logger}
}

type batchResponse struct {
	BatchID  string                       `json:"batch_id"`
	Accepted []enrichment.EnrichedCompany `json:"accepted"`
	Rejected []enrichment.FailedRecord    `json:"rejected"`
	Dropped  int                          `json:"dropped"`
}

// HandleSubmitBatch accepts a gazette batch as either CSV (text/csv) or a
// JSON record array, runs it synchronously, and returns the classified
// output.
func (h *Handler) HandleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, ok := h.decodeRecords(w, r)
	if !ok {
		return
	}

	result, err := h.service.Run(ctx, records)
	if err != nil {
		h.logger.Error("batch run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "batch processing failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		BatchID:  result.BatchID.String(),
		Accepted: result.Accepted,
		Rejected: result.Rejected,
		Dropped:  result.Dropped,
	})
}

// HandleHealth reports process liveness plus the health of any registered
// dependencies.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for _, checker := range h.health {
		if checker == nil {
			continue
		}
		if err := checker.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRecords(w http.ResponseWriter, r *http.Request) ([]enrichment.GazetteRecord, bool) {
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "text/csv"):
		records, err := enrichment.ParseGazetteCSV(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed CSV: " + err.Error()})
			return nil, false
		}
		return records, true
	case strings.HasPrefix(contentType, "application/json"), contentType == "":
		var records []enrichment.GazetteRecord
		if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON: " + err.Error()})
			return nil, false
		}
		return records, true
	default:
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "expected text/csv or application/json"})
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
