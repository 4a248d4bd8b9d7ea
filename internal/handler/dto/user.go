package dto

import (
	"time"
	"unicode/utf8"

	"github.com/citeshelf/citeshelf/internal/model"
)

// MaxLoginLength bounds user logins.
const MaxLoginLength = 64

// RegisterRequest is the body of POST /users/registration/.
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Validate checks the request shape.
func (r *RegisterRequest) Validate() error {
	if r.Login == "" {
		return invalid("login", "is required")
	}
	if utf8.RuneCountInString(r.Login) > MaxLoginLength {
		return invalid("login", "must be at most %d characters", MaxLoginLength)
	}
	if r.Password == "" {
		return invalid("password", "is required")
	}
	return nil
}

// UserResponse represents a user in API responses. The password hash is
// never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Login:     u.Login,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
