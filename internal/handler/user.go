package handler

import (
	"log/slog"
	"net/http"

	"github.com/citeshelf/citeshelf/internal/handler/dto"
	"github.com/citeshelf/citeshelf/internal/service"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register creates an account.
// POST /users/registration/
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
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

	user, err := h.users.Register(r.Context(), sess, req.Login, req.Password)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// GetUser looks a user up by login.
// GET /users/get_user/?login=
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("login")
	if login == "" {
		writeValidationError(w, &dto.ValidationError{Field: "login", Message: "is required"})
		return
	}

	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	user, err := sess.GetUserByLogin(r.Context(), login)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Login checks a login and password pair. Nothing is issued on success.
// POST /users/login_user/?login=&password=
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	login, password := q.Get("login"), q.Get("password")
	if login == "" || password == "" {
		writeValidationError(w, &dto.ValidationError{Field: "login", Message: "login and password are required"})
		return
	}

	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.users.Login(r.Context(), sess, login, password)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// ChangePassword replaces a user's password.
// PUT /users/change_password?User_id=&new_password=
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, ok := requireID(w, q, "User_id")
	if !ok {
		return
	}
	newPassword := q.Get("new_password")
	if newPassword == "" {
		writeValidationError(w, &dto.ValidationError{Field: "new_password", Message: "is required"})
		return
	}

	sess, ok := session(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.users.ChangePassword(r.Context(), sess, userID, newPassword)
	if err != nil {
		handleStoreError(w, r, h.logger, err)
		return
	}

	h.logger.Info("password_changed", "user_id", user.ID)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
