package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-valuation/internal/adapter/presenter"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const (
	maxBodyBytes = 1 << 20
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handlers serves the valuation endpoints
type Handlers struct {
	valuator  Valuator
	reports   ReportGenerator
	snapshots Snapshotter
	log       zerolog.Logger
}

// NewHandlers creates new valuation handlers
func NewHandlers(valuator Valuator, reports ReportGenerator, snapshots Snapshotter, log zerolog.Logger) *Handlers {
	return &Handlers{
		valuator:  valuator,
		reports:   reports,
		snapshots: snapshots,
		log:       log.With().Str("component", "http_handlers").Logger(),
	}
}

// HandleHealth handles GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleValuate handles POST /api/valuations
func (h *Handlers) HandleValuate(w http.ResponseWriter, r *http.Request) {
	var req presenter.ValuationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accounts, err := req.ToDomain()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	valuation, err := h.valuator.Valuate(r.Context(), accounts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presenter.NewValuationResponse(valuation))
}

// HandleOwnerValuation handles GET /api/portfolio/valuation
func (h *Handlers) HandleOwnerValuation(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerFromContext(r.Context())

	valuation, err := h.valuator.ValuateOwner(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presenter.NewValuationResponse(valuation))
}

// HandleOwnerValuationExport handles GET /api/portfolio/valuation.xlsx
func (h *Handlers) HandleOwnerValuationExport(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerFromContext(r.Context())

	valuation, err := h.valuator.ValuateOwner(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	file, err := h.reports.Generate(r.Context(), valuation)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="valuation-%s.xlsx"`, valuation.ValuedAt.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file); err != nil {
		h.log.Error().Err(err).Msg("failed to write spreadsheet")
	}
}

// HandleCaptureSnapshots handles POST /api/portfolio/snapshots
func (h *Handlers) HandleCaptureSnapshots(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerFromContext(r.Context())

	snapshots, err := h.snapshots.Capture(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, presenter.NewSnapshotResponses(snapshots))
}

// HandleSnapshotHistory handles GET /api/portfolio/snapshots?limit=N
func (h *Handlers) HandleSnapshotHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := ownerFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	snapshots, err := h.snapshots.History(r.Context(), ownerID, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presenter.NewSnapshotResponses(snapshots))
}

// writeServiceError maps domain errors to HTTP status codes
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("valuation request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
