package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is what an administrative account may do.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHandler Role = "handler"
)

// User is an administrative account: a procurement handler or an admin.
// Vendors never have accounts; they reach their records through secure tokens.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
