/*
handlers.go - HTTP API handlers for the presence audit service

PURPOSE:
  Exposes the audit engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Analyses:
    POST   /api/analyses       Run an audit over submitted sheets
    GET    /api/analyses       List completed runs, newest first
    GET    /api/analyses/{id}  Fetch one run in full

  Health:
    GET    /healthz            Liveness probe

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (analyzer, registry)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unresolvable sheet columns
  - 404: Run not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/presence-audit/recon"
	"github.com/warp/presence-audit/store"
	"github.com/warp/presence-audit/tabular"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Analyzer *recon.Analyzer
	Registry *store.Memory

	log zerolog.Logger
}

// NewHandler creates a new handler with the given registry.
func NewHandler(registry *store.Memory, log zerolog.Logger) *Handler {
	return &Handler{
		Analyzer: recon.NewAnalyzer(log),
		Registry: registry,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// ANALYSIS HANDLERS
// =============================================================================

// CreateAnalysis runs one audit over the submitted sheets and registers
// the result.
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Security.Rows) == 0 && len(req.Overtime.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sheet is required", nil)
		return
	}

	filter, err := req.Range()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	result, err := h.Analyzer.Run(req.Security.toTable(), req.Overtime.toTable(), filter)
	if err != nil {
		var missing *tabular.MissingColumnError
		if errors.As(err, &missing) {
			writeError(w, http.StatusBadRequest, "Security sheet is missing a required column", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Audit failed", err)
		return
	}

	run, err := h.Registry.Save(r.Context(), filter, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register run", err)
		return
	}

	h.log.Info().Str("run_id", run.ID).Int("verdicts", len(result.Verdicts)).
		Msg("analysis complete")

	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// GetAnalysis returns one run in full.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.Registry.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "Run not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get run", err)
		return
	}

	writeJSON(w, http.StatusOK, toRunDTO(run))
}

// ListAnalyses returns run summaries, newest first.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Registry.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunSummaryDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunSummaryDTO(run)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
