package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citeshelf/citeshelf/internal/view"
)

// ItemHandler renders the item page. It does not touch the store.
type ItemHandler struct {
	views  *view.Renderer
	logger *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(views *view.Renderer, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{views: views, logger: logger}
}

// Get echoes the path id into item.html.
// GET /items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, h.logger, h.views.Item(chi.URLParam(r, "id")))
}
