package entity

import (
	"time"
)

// UserStatus gates login: only ACTIVE users may authenticate.
type UserStatus string

const (
	StatusActive  UserStatus = "ACTIVE"
	StatusBanned  UserStatus = "BANNED"
	StatusPending UserStatus = "PENDING"
)

// Valid reports whether s is a known status value.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusBanned, StatusPending:
		return true
	}
	return false
}

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash, never plain text.
type User struct {
	ID              string
	Email           string
	Password        string
	Name            string
	Phone           string
	Avatar          string
	Status          UserStatus
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserWithRoles is the fully materialized aggregate used by authentication
// and authorization: the user plus the codes reachable through
// user_roles -> roles -> role_permissions -> permissions.
type UserWithRoles struct {
	User
	RoleCodes       []string
	PermissionCodes []string
}

// Projection is the sanitized shape returned to clients (no password hash).
type Projection struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	Avatar          string     `json:"avatar,omitempty"`
	Status          UserStatus `json:"status"`
	IsEmailVerified bool       `json:"is_email_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Roles           []string   `json:"roles,omitempty"`
}

// Project maps a User to its client-safe projection.
func (u *User) Project() Projection {
	return Projection{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Phone:           u.Phone,
		Avatar:          u.Avatar,
		Status:          u.Status,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// Project includes the role codes in the projection.
func (u *UserWithRoles) Project() Projection {
	p := u.User.Project()
	p.Roles = u.RoleCodes
	if p.Roles == nil {
		p.Roles = []string{}
	}
	return p
}
