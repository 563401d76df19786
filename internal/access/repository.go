package access

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gramkatha/backend/internal/models"
)

// Repository implements Store on the category assignment tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an access repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveCategoryExists reports whether an active category row exists.
func (r *Repository) ActiveCategoryExists(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM story_categories WHERE id = $1 AND is_active)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// OrganizationHasCategory reports whether an assignment row exists.
func (r *Repository) OrganizationHasCategory(ctx context.Context, orgID, categoryID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM category_organizations
		WHERE organization_id = $1 AND category_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, orgID, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CategoriesForOrganization lists active categories assigned to the organization.
func (r *Repository) CategoriesForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.StoryCategory, error) {
	const q = `SELECT c.id, c.name, c.description, c.is_active, c.created_at, c.updated_at
		FROM story_categories c
		INNER JOIN category_organizations co ON co.category_id = c.id
		WHERE co.organization_id = $1 AND c.is_active
		ORDER BY c.name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.StoryCategory
	for rows.Next() {
		var c models.StoryCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// OrganizationsForCategory lists organizations assigned to the category.
func (r *Repository) OrganizationsForCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Organization, error) {
	const q = `SELECT o.id, o.name, o.region_id, o.is_active, o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN category_organizations co ON co.organization_id = o.id
		WHERE co.category_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.RegionID, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
