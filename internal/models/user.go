package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform identity. Role, organization and region are all
// nullable: a user without a role has no access anywhere, and deleting
// related rows sets these to NULL rather than removing the user.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	RoleID         *uuid.UUID `json:"role_id"`
	RoleName       string     `json:"role_name,omitempty"`
	RoleKind       RoleKind   `json:"role_kind"`
	OrganizationID *uuid.UUID `json:"organization_id"`
	RegionID       *uuid.UUID `json:"region_id"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Kind returns the user's role kind, treating a missing user or missing role
// as RoleUnknown.
func (u *User) Kind() RoleKind {
	if u == nil || u.RoleID == nil || u.RoleKind == "" {
		return RoleUnknown
	}
	return u.RoleKind
}

// IsSuperAdmin reports whether the user carries the Super admin role.
func (u *User) IsSuperAdmin() bool { return u.Kind() == RoleSuperAdmin }
