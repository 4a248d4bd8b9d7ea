// Package model defines the persisted entities of the catalog.
// Transport representations live in handler/dto.
package model

import "time"

// User is an account identified by a unique login.
type User struct {
	ID           string
	Login        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
