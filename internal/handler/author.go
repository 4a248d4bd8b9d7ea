package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/citeshelf/citeshelf/internal/handler/dto"
	"github.com/citeshelf/citeshelf/internal/metrics"
)

// AuthorHandler handles author CRUD.
type AuthorHandler struct {
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthorHandler creates a new AuthorHandler.
func NewAuthorHandler(recorder metrics.Recorder, logger *slog.Logger) *AuthorHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthorHandler{
		metrics: recorder,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one author.
// GET /author/?author_id=
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r.URL.Query(), "author_id")
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	author, err := sess.GetAuthor(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAuthorResponse(author))
}

// List returns a page of authors ordered by name.
// GET /authors/?skip=&limit=
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(w, r.URL.Query())
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	authors, err := sess.ListAuthors(r.Context(), skip, limit)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAuthorListResponse(authors))
}

// Create adds an author.
// POST /author/
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthorRequest
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

	author := req.ToModel(uuid.NewString(), h.now())
	if err := sess.CreateAuthor(r.Context(), author); err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.metrics.IncAuthorCreated()
	h.logger.Info("author_created", "author_id", author.ID)
	writeJSON(w, http.StatusCreated, dto.ToAuthorResponse(author))
}

// Update replaces an author's name, organization and ORCID.
// PUT /author/?author_id=
func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r.URL.Query(), "author_id")
	if !ok {
		return
	}
	var req dto.AuthorRequest
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

	author, err := sess.UpdateAuthor(r.Context(), req.ToModel(id, h.now()))
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.metrics.IncAuthorUpdated()
	h.logger.Info("author_updated", "author_id", author.ID)
	writeJSON(w, http.StatusOK, dto.ToAuthorResponse(author))
}

// Delete removes an author and returns it.
// DELETE /author/?author_id=
func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r.URL.Query(), "author_id")
	if !ok {
		return
	}
	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	author, err := sess.DeleteAuthor(r.Context(), id)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.metrics.IncAuthorDeleted()
	h.logger.Info("author_deleted", "author_id", author.ID)
	writeJSON(w, http.StatusOK, dto.ToAuthorResponse(author))
}
