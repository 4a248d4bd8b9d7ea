package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/citeshelf/citeshelf/internal/handler/dto"
	"github.com/citeshelf/citeshelf/internal/metrics"
)

// DefaultSearchLimit is used when no limit is configured.
const DefaultSearchLimit = 30

// SearchHandler handles free-text search.
type SearchHandler struct {
	defaultLimit int
	metrics      metrics.Recorder
	logger       *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(defaultLimit int, recorder metrics.Recorder, logger *slog.Logger) *SearchHandler {
	if defaultLimit <= 0 {
		defaultLimit = DefaultSearchLimit
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SearchHandler{
		defaultLimit: clamp(defaultLimit, 1, MaxPageLimit),
		metrics:      recorder,
		logger:       logger,
	}
}

// Search returns texts matching a free-form query.
// GET /search/?query=&limit=
// The older parameter name "request" is accepted in place of "query".
// The parameter must be present; a blank value matches nothing.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var query string
	switch {
	case q.Has("query"):
		query = strings.TrimSpace(q.Get("query"))
	case q.Has("request"):
		query = strings.TrimSpace(q.Get("request"))
	default:
		writeValidationError(w, &dto.ValidationError{Field: "query", Message: "is required"})
		return
	}
	limit, err := intParam(q, "limit", h.defaultLimit)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	limit = clamp(limit, 1, MaxPageLimit)

	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	start := time.Now()
	results, err := sess.SearchTexts(r.Context(), query, limit)
	h.metrics.ObserveSearchDuration(time.Since(start))
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSearchResponse(results))
}
