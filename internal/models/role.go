package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleKind is the typed privilege tag carried by every role. It is assigned
// once when the role row is created and replaces string comparisons on the
// display name at every decision point.
type RoleKind string

const (
	RoleSuperAdmin RoleKind = "super_admin"
	RoleAdmin      RoleKind = "admin"
	RoleEditor     RoleKind = "editor"
	RoleWriter     RoleKind = "writer"
	RoleUnknown    RoleKind = "unknown"
)

// Canonical role display names. These exact literals (case included) are the
// ground truth the kind mapping is derived from.
const (
	RoleNameSuperAdmin = "Super admin"
	RoleNameAdmin      = "Admin"
	RoleNameEditor     = "Editor"
	RoleNameWriter     = "Writer"
)

// ParseRoleKind maps a role display name to its kind. The match is exact and
// case-sensitive; anything unrecognized is RoleUnknown (zero privilege).
func ParseRoleKind(roleName string) RoleKind {
	switch roleName {
	case RoleNameSuperAdmin:
		return RoleSuperAdmin
	case RoleNameAdmin:
		return RoleAdmin
	case RoleNameEditor:
		return RoleEditor
	case RoleNameWriter:
		return RoleWriter
	default:
		return RoleUnknown
	}
}

// Role is a named privilege tag with an attached permission set.
type Role struct {
	ID        uuid.UUID `json:"id"`
	RoleName  string    `json:"role_name"`
	Kind      RoleKind  `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission is a named capability slug (e.g. manage_users, post_stories).
type Permission struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`
}

// Known permission slugs.
const (
	PermManageUsers           = "manage_users"
	PermManageOrganizations   = "manage_organizations"
	PermManageStoryCategories = "manage_story_categories"
	PermPostStories           = "post_stories"
	PermViewStories           = "view_stories"
	PermViewActivity          = "view_activity"
)
