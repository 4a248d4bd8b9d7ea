package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/citeshelf/citeshelf/internal/handler/dto"
	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/model"
)

// CitationHandler handles citation endpoints.
type CitationHandler struct {
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewCitationHandler creates a new CitationHandler.
func NewCitationHandler(recorder metrics.Recorder, logger *slog.Logger) *CitationHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CitationHandler{
		metrics: recorder,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create records that one text cites another.
// POST /citation/
func (h *CitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	now := h.now()
	citation := &model.Citation{
		ID:           ulid.Make().String(),
		CitingTextID: req.CitingTextID,
		CitedTextID:  req.CitedTextID,
		CreatedAt:    now,
	}
	if err := sess.CreateCitation(r.Context(), citation); err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.metrics.IncCitationCreated()
	h.logger.Info("citation_created",
		"citation_id", citation.ID,
		"citing_text_id", citation.CitingTextID,
		"cited_text_id", citation.CitedTextID,
	)
	writeJSON(w, http.StatusCreated, dto.ToCitationResponse(citation))
}

// ListOf returns the citations received by a text, oldest first.
// GET /citations/?text_id=
func (h *CitationHandler) ListOf(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r.URL.Query(), "text_id")
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	citations, err := sess.ListCitationsOf(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCitationListResponse(citations))
}
