// Package rbac resolves role-based permissions. A permission check is a
// set-membership query against the role's assigned permission slugs; users
// without a role never hold any permission.
package rbac

import (
	"context"

	"github.com/google/uuid"

	"github.com/gramkatha/backend/internal/models"
)

// Store answers permission membership queries for a role.
type Store interface {
	RoleHasPermission(ctx context.Context, roleID uuid.UUID, slug string) (bool, error)
	RoleHasAnyPermission(ctx context.Context, roleID uuid.UUID, slugs []string) (bool, error)
	CountRolePermissions(ctx context.Context, roleID uuid.UUID, slugs []string) (int, error)
	RolePermissions(ctx context.Context, roleID uuid.UUID) ([]string, error)
}

// Resolver checks permissions for users. A nil user or a user with no role
// resolves to no permissions, never to an error.
type Resolver struct {
	store Store
}

// NewResolver creates a permission resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// HasPermission reports whether the user's role holds the permission slug.
func (r *Resolver) HasPermission(ctx context.Context, user *models.User, slug string) (bool, error) {
	if user == nil || user.RoleID == nil {
		return false, nil
	}
	return r.store.RoleHasPermission(ctx, *user.RoleID, slug)
}

// HasAnyPermission reports whether the user's role holds at least one of the slugs.
func (r *Resolver) HasAnyPermission(ctx context.Context, user *models.User, slugs ...string) (bool, error) {
	if user == nil || user.RoleID == nil || len(slugs) == 0 {
		return false, nil
	}
	return r.store.RoleHasAnyPermission(ctx, *user.RoleID, slugs)
}

// HasAllPermissions reports whether the user's role holds every slug.
func (r *Resolver) HasAllPermissions(ctx context.Context, user *models.User, slugs ...string) (bool, error) {
	if user == nil || user.RoleID == nil || len(slugs) == 0 {
		return false, nil
	}
	n, err := r.store.CountRolePermissions(ctx, *user.RoleID, slugs)
	if err != nil {
		return false, err
	}
	return n == len(slugs), nil
}

// UserPermissions returns all permission slugs held by the user's role.
func (r *Resolver) UserPermissions(ctx context.Context, user *models.User) ([]string, error) {
	if user == nil || user.RoleID == nil {
		return nil, nil
	}
	return r.store.RolePermissions(ctx, *user.RoleID)
}
