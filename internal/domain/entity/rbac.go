package entity

import "time"

// Role groups permissions. Code is the stable handle used in guards
// (e.g. "ADMIN"); Name is the display label.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission is a single grantable capability, identified by Code
// (e.g. "MANAGE_USERS").
type Permission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleWithPermissions is a role plus its granted permissions.
type RoleWithPermissions struct {
	Role
	Permissions []Permission `json:"permissions"`
}
