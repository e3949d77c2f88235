package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/maltedev/marketplace-search/internal/database"
	"github.com/maltedev/marketplace-search/internal/models"
	"github.com/maltedev/marketplace-search/internal/search"
	"github.com/maltedev/marketplace-search/internal/storage"
)

const defaultHistoryLimit = 20

type Searcher interface {
	Search(ctx context.Context, req search.Request) (*models.SearchRun, error)
	Sites() []string
}

type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]database.RunSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SearchRun, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	searcher Searcher
	history  HistoryStore
	checks   map[string]HealthCheck
	logger   *slog.Logger
}

// NewHandlers accepts a nil history; the history endpoints then answer 503.
func NewHandlers(searcher Searcher, history HistoryStore, checks map[string]HealthCheck, logger *slog.Logger) *Handlers {
	return &Handlers{
		searcher: searcher,
		history:  history,
		checks:   checks,
		logger:   logger.With("component", "api"),
	}
}

// ErrorResponse carries the transport details when a marketplace refused the query.
type ErrorResponse struct {
	Error       string `json:"error"`
	Site        string `json:"site,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
	BodyExcerpt string `json:"body_excerpt,omitempty"`
}

// Search handles GET /api/v1/search?q=&site=&limit=&format=
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := optionalInt(query.Get("limit"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	run, err := h.searcher.Search(r.Context(), search.Request{
		Site:  query.Get("site"),
		Query: query.Get("q"),
		Limit: limit,
	})
	if err != nil {
		h.respondSearchError(w, err)
		return
	}

	if query.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="scraped_data.csv"`)
		w.WriteHeader(http.StatusOK)
		if err := storage.WriteCSV(w, run.Items); err != nil {
			h.logger.Error("failed to write csv response", "error", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

func (h *Handlers) respondSearchError(w http.ResponseWriter, err error) {
	var transportErr *models.TransportError

	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		h.respondError(w, http.StatusBadRequest, "q is required")
	case errors.Is(err, search.ErrUnknownSite):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transportErr):
		h.logger.Warn("marketplace request failed", "error", err)
		h.respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:       err.Error(),
			Site:        transportErr.Site,
			StatusCode:  transportErr.StatusCode,
			BodyExcerpt: transportErr.BodyExcerpt,
		})
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, "search timed out")
	default:
		h.logger.Error("search failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "search failed")
	}
}

// Sites handles GET /api/v1/sites
func (h *Handlers) Sites(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string][]string{"sites": h.searcher.Sites()})
}

// ListHistory handles GET /api/v1/history?limit=
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.respondError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	limit, err := optionalInt(r.URL.Query().Get("limit"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	runs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	h.respondJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /api/v1/history/{runID}
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.respondError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := h.history.Get(r.Context(), id)
	if errors.Is(err, database.ErrRunNotFound) {
		h.respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get run", "error", err, "run_id", id)
		h.respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	health := map[string]interface{}{
		"status":       "ok",
		"dependencies": deps,
	}
	if status != http.StatusOK {
		health["status"] = "degraded"
	}

	h.respondJSON(w, status, health)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message})
}
