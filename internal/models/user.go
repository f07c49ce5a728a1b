package models

import "time"

// User captures application-facing fields for an authenticated identity.
// The password hash never serializes into responses.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
