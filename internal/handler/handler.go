// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/citeshelf/citeshelf/internal/handler/dto"
	"github.com/citeshelf/citeshelf/internal/middleware"
	"github.com/citeshelf/citeshelf/internal/service"
	"github.com/citeshelf/citeshelf/internal/store"
)

// Handler serves the service-level endpoints.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Hello reports the service name and version.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Citeshelf bibliographic API",
		"version": h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// storeErrors maps known data-access failures to responses.
var storeErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{store.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{store.ErrLoginExists, http.StatusConflict, "LOGIN_TAKEN", "Login is already taken"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid login or password"},
	{service.ErrEmptyPassword, http.StatusBadRequest, "VALIDATION_ERROR", "Password must not be empty"},
	{store.ErrAuthorNotFound, http.StatusNotFound, "AUTHOR_NOT_FOUND", "Author not found"},
	{store.ErrAuthorInUse, http.StatusConflict, "AUTHOR_IN_USE", "Author is still credited on texts"},
	{store.ErrTextNotFound, http.StatusNotFound, "TEXT_NOT_FOUND", "Text not found"},
	{store.ErrNoAuthors, http.StatusBadRequest, "VALIDATION_ERROR", "A text needs at least one author"},
	{store.ErrUnknownAuthor, http.StatusUnprocessableEntity, "UNKNOWN_AUTHOR", "Referenced author does not exist"},
	{store.ErrUnknownText, http.StatusUnprocessableEntity, "UNKNOWN_TEXT", "Referenced text does not exist"},
	{store.ErrSelfCitation, http.StatusBadRequest, "SELF_CITATION", "A text cannot cite itself"},
	{store.ErrCitationExists, http.StatusConflict, "CITATION_EXISTS", "Citation already exists"},
}

// handleStoreError writes the response for an error returned by a session
// or service call. Unknown errors are logged and reported as 500.
func handleStoreError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if dto.IsValidationError(err) {
		writeValidationError(w, err)
		return
	}
	for _, m := range storeErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.message)
			return
		}
	}

	logger.Error("request failed",
		"request_id", requestID(r),
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func requestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}

// session returns the request's store session. The session middleware must
// be mounted in front of every handler that calls it.
func session(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (store.Session, bool) {
	sess, ok := store.FromContext(r.Context())
	if !ok {
		logger.Error("no session in request context", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return nil, false
	}
	return sess, true
}

// decodeJSON reads a JSON body into v and writes the 4xx itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is required")
		default:
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		}
		return false
	}
	return true
}

// writeValidationError reports a structurally invalid request.
func writeValidationError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

// requireID reads a UUID query parameter.
func requireID(w http.ResponseWriter, q url.Values, name string) (string, bool) {
	id, err := dto.ParseID(name, q.Get(name))
	if err != nil {
		writeValidationError(w, err)
		return "", false
	}
	return id, true
}

// Pagination bounds.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// pagination reads skip and limit. Missing values take the defaults; limit
// is clamped to [1, MaxPageLimit] and a negative skip is treated as 0.
func pagination(w http.ResponseWriter, q url.Values) (skip, limit int, ok bool) {
	skip, err := intParam(q, "skip", 0)
	if err != nil {
		writeValidationError(w, err)
		return 0, 0, false
	}
	limit, err = intParam(q, "limit", DefaultPageLimit)
	if err != nil {
		writeValidationError(w, err)
		return 0, 0, false
	}
	return max(skip, 0), clamp(limit, 1, MaxPageLimit), true
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &dto.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
