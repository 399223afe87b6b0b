package domain

import "time"

// User represents an application user. Identity beyond the opaque user id is handled by
// the auth layer; the core services only ever see UserID.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
