// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleModerator  Role = "MODERATOR"
	RoleMediaBuyer Role = "MEDIA_BUYER"
	RoleSupport    Role = "SUPPORT"
	RoleUser       Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMediaBuyer, RoleSupport, RoleUser:
		return true
	}
	return false
}

// UserStatus represents the registration approval state of an account.
// New registrations start as PENDING and must be approved by an admin
// before the user can sign in.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusRejected UserStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	}
	return false
}

// User represents a platform account. Blocking is independent of the
// approval status: an approved user may still be blocked.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // Never serialize the hash
	Telegram     *string    `json:"telegram,omitempty"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	IsBlocked    bool       `json:"isBlocked"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAuthenticate reports whether the account may hold a valid session:
// it must be approved and not blocked. A token presented for an account
// that fails this check is treated the same as no token at all.
func (u *User) CanAuthenticate() bool {
	return u.Status == UserStatusApproved && !u.IsBlocked
}

// UserRef is the trimmed author representation embedded in article and
// comment responses.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// Ref returns the embeddable reference for the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
