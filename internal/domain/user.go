// Package domain holds the core ShoeFit types shared by the store, services and API.
package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin may manage the shoe catalog.
	RoleAdmin Role = "admin"
	// RoleMember may browse the catalog and manage their own shoes.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents an account.
type User struct {
	Entity
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// IsAdmin returns true if the user may manage the catalog.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
