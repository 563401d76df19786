// Package access resolves which categories an organization's writers may
// submit into. The category_organizations assignment table is the
// access-control edge.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gramkatha/backend/internal/models"
)

var (
	// ErrCategoryNotFound means the category is missing or inactive.
	// Inactive categories fail closed with this, not with ErrNoCategoryAccess.
	ErrCategoryNotFound = errors.New("category not found or inactive")
	// ErrNoCategoryAccess means the user's organization has no assignment
	// row for the category.
	ErrNoCategoryAccess = errors.New("no access to category")
)

// Store answers category existence and assignment queries.
type Store interface {
	ActiveCategoryExists(ctx context.Context, categoryID uuid.UUID) (bool, error)
	OrganizationHasCategory(ctx context.Context, orgID, categoryID uuid.UUID) (bool, error)
	CategoriesForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.StoryCategory, error)
	OrganizationsForCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Organization, error)
}

// Resolver gates category write access.
type Resolver struct {
	store Store
}

// NewResolver creates an access resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// CanWriteCategory returns nil when the user may submit into the category:
// the category must be active, and the user must either be a Super admin or
// belong to an organization assigned to the category.
func (r *Resolver) CanWriteCategory(ctx context.Context, user *models.User, categoryID uuid.UUID) error {
	active, err := r.store.ActiveCategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !active {
		return ErrCategoryNotFound
	}
	if user == nil {
		return ErrNoCategoryAccess
	}
	if user.IsSuperAdmin() {
		return nil
	}
	if user.OrganizationID == nil {
		return ErrNoCategoryAccess
	}
	ok, err := r.store.OrganizationHasCategory(ctx, *user.OrganizationID, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoCategoryAccess
	}
	return nil
}

// ActiveCategoryExists reports whether the category exists and is active.
func (r *Resolver) ActiveCategoryExists(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	return r.store.ActiveCategoryExists(ctx, categoryID)
}

// CategoriesForOrganization lists categories assigned to the organization.
func (r *Resolver) CategoriesForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.StoryCategory, error) {
	return r.store.CategoriesForOrganization(ctx, orgID)
}

// OrganizationsForCategory lists organizations assigned to the category.
func (r *Resolver) OrganizationsForCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Organization, error) {
	return r.store.OrganizationsForCategory(ctx, categoryID)
}
