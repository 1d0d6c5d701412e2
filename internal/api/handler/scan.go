package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warescan/warescan/internal/api/middleware"
	"github.com/warescan/warescan/internal/api/response"
	"github.com/warescan/warescan/internal/api/validation"
	"github.com/warescan/warescan/internal/export"
	"github.com/warescan/warescan/internal/intake"
	"github.com/warescan/warescan/internal/scan"
)

const defaultListLimit = 50

type readRequest struct {
	Code string `json:"code"`
}

type readResponse struct {
	Status string        `json:"status"` // created, updated or suppressed
	Record *scanResponse `json:"record,omitempty"`
}

type scanResponse struct {
	ID            string `json:"id"`
	Barcode       string `json:"barcode"`
	ScannedBy     string `json:"scannedBy"`
	ScannedByName string `json:"scannedByName"`
	ScannedAt     string `json:"scannedAt"`
}

// ScanHandler handles scan ingestion and log review endpoints.
type ScanHandler struct {
	pipeline *intake.Pipeline
	repo     scan.Repository
	exporter *export.CSVExporter
	notifier intake.ScanNotifier
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(pipeline *intake.Pipeline, repo scan.Repository, exporter *export.CSVExporter, notifier intake.ScanNotifier) *ScanHandler {
	return &ScanHandler{
		pipeline: pipeline,
		repo:     repo,
		exporter: exporter,
		notifier: notifier,
	}
}

// IngestRead handles POST /scans/reads. The camera channel calls this
// once per successful frame decode; deduplication is entirely the
// debounce guard's job downstream.
func (h *ScanHandler) IngestRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req readRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateReadRequest(validation.ReadRequest{Code: req.Code})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is required", requestID)
		return
	}

	res := h.pipeline.Submit(r.Context(), intake.Read{
		Code:   strings.TrimSpace(req.Code),
		Actor:  scan.Actor{ID: identity.AccountID, Name: identity.Name},
		Source: "camera",
	})

	switch {
	case res.Err != nil:
		slog.Error("failed to ingest read", "error", res.Err)
		response.Err(w, http.StatusInternalServerError, "WRITE_ERROR", "Failed to record scan", requestID)
	case res.Suppressed:
		response.Success(w, http.StatusOK, readResponse{Status: "suppressed"}, requestID)
	case res.Outcome.Action == scan.ActionCreated:
		response.Success(w, http.StatusCreated, readResponse{
			Status: string(res.Outcome.Action),
			Record: toScanResponse(res.Outcome.Record),
		}, requestID)
	default:
		response.Success(w, http.StatusOK, readResponse{
			Status: string(res.Outcome.Action),
			Record: toScanResponse(res.Outcome.Record),
		}, requestID)
	}
}

// List handles GET /scans.
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 1000 {
			response.Err(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer between 1 and 1000", requestID)
			return
		}
		limit = parsed
	}

	records, err := h.repo.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list scans", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list scans", requestID)
		return
	}

	items := make([]scanResponse, 0, len(records))
	for i := range records {
		items = append(items, *toScanResponse(&records[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, limit, requestID)
}

// Export handles GET /scans/export, streaming the full log as CSV.
func (h *ScanHandler) Export(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="scan-log.csv"`)

	if err := h.exporter.Write(r.Context(), w); err != nil {
		// Headers may already be gone; log and stop.
		slog.Error("failed to export scans", "error", err, "requestId", requestID)
	}
}

// Delete handles DELETE /scans/{id}.
func (h *ScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, scan.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Scan record not found", requestID)
			return
		}
		slog.Error("failed to delete scan", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete scan", requestID)
		return
	}

	if h.notifier != nil {
		h.notifier.ScansChanged(r.Context())
	}

	response.NoContent(w)
}

func toScanResponse(rec *scan.Record) *scanResponse {
	return &scanResponse{
		ID:            rec.ID.String(),
		Barcode:       rec.Barcode,
		ScannedBy:     rec.ScannedBy.String(),
		ScannedByName: rec.ScannedByName,
		ScannedAt:     rec.ScannedAt.UTC().Format(time.RFC3339),
	}
}
