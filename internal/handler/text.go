package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/citeshelf/citeshelf/internal/handler/dto"
	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/view"
)

// TextHandler serves the text pages and the JSON write endpoints.
type TextHandler struct {
	views   *view.Renderer
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewTextHandler creates a new TextHandler.
func NewTextHandler(views *view.Renderer, recorder metrics.Recorder, logger *slog.Logger) *TextHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TextHandler{
		views:   views,
		metrics: recorder,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get renders one text.
// GET /text/?text_id=
func (h *TextHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r.URL.Query(), "text_id")
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	text, err := sess.GetText(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	renderHTML(w, r, h.logger, h.views.Text(text))
}

// List renders a page of texts, newest first.
// GET /texts/?skip=&limit=
func (h *TextHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(w, r.URL.Query())
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	texts, err := sess.ListTexts(r.Context(), skip, limit)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	renderHTML(w, r, h.logger, h.views.Texts(texts, skip, limit))
}

// Create adds a text with its ordered authors.
// POST /text/
func (h *TextHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTextRequest
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

	text, err := sess.CreateText(r.Context(), req.ToModel(uuid.NewString(), h.now()), req.AuthorIDs)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.metrics.IncTextCreated()
	h.logger.Info("text_created", "text_id", text.ID, "author_ids", text.AuthorIDs())
	writeJSON(w, http.StatusCreated, dto.ToTextResponse(text))
}

// Delete removes a text along with its citations.
// DELETE /text/?text_id=
func (h *TextHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r.URL.Query(), "text_id")
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	text, err := sess.DeleteText(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.metrics.IncTextDeleted()
	h.logger.Info("text_deleted", "text_id", text.ID)
	writeJSON(w, http.StatusOK, dto.ToTextResponse(text))
}

// renderHTML renders c fully before writing so a template failure still
// produces a clean 500.
func renderHTML(w http.ResponseWriter, r *http.Request, logger *slog.Logger, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger.Error("render failed",
			"request_id", requestID(r),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
