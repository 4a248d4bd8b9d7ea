// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/citeshelf/citeshelf/internal/auth"
	"github.com/citeshelf/citeshelf/internal/metrics"
	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrEmptyPassword      = errors.New("password must not be empty")
)

// UserService handles registration and password checks.
type UserService struct {
	hasher  *auth.Hasher
	metrics metrics.Recorder
	now     func() time.Time

	// dummyHash is verified against when the login is unknown so both
	// failure paths cost the same.
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(hasher *auth.Hasher, recorder metrics.Recorder) *UserService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultParams)
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	dummy, _ := hasher.Hash(uuid.NewString())
	return &UserService{
		hasher:    hasher,
		metrics:   recorder,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

// Register creates a user with a hashed password.
// Returns store.ErrLoginExists if the login is taken.
func (s *UserService) Register(ctx context.Context, users store.UserStore, login, password string) (*model.User, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// Login checks the password for login. Unknown logins and wrong passwords
// both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, users store.UserStore, login, password string) (*model.User, error) {
	user, err := users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			s.metrics.IncLoginFailed()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces the user's password hash.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *UserService) ChangePassword(ctx context.Context, users store.UserStore, userID, newPassword string) (*model.User, error) {
	if newPassword == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return users.UpdateUserPassword(ctx, userID, hash, s.now())
}
