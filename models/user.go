package models

import (
	"time"

	"github.com/google/uuid"
)

// Role controls access to the admin review surface.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// User represents a tracked system user. Token issuance lives outside this
// service; APIToken is only resolved, never minted here.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	APIToken  string    `json:"-" db:"api_token"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user may review other users' activity.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Client is a billable client that LLM-reported client names are matched
// against, case-insensitively.
type Client struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ContactEmail string    `json:"contact_email,omitempty" db:"contact_email"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
