package organizations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gramkatha/backend/internal/models"
)

var ErrOrganizationNotFound = errors.New("organization not found")

const orgCols = `o.id, o.name, o.region_id, COALESCE(rg.name, ''), o.is_active, o.created_at, o.updated_at`

const orgBase = `SELECT ` + orgCols + ` FROM organizations o LEFT JOIN regions rg ON rg.id = o.region_id`

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organization repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns organizations, optionally filtered by region.
func (r *Repository) List(ctx context.Context, regionID *uuid.UUID) ([]models.Organization, error) {
	q := orgBase
	var args []any
	if regionID != nil {
		args = append(args, *regionID)
		q += ` WHERE o.region_id = $1`
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY o.name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.RegionID, &org.RegionName, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, org)
	}
	return list, rows.Err()
}

// Get returns one organization or ErrOrganizationNotFound.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.pool.QueryRow(ctx, orgBase+` WHERE o.id = $1`, id).
		Scan(&org.ID, &org.Name, &org.RegionID, &org.RegionName, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Create inserts an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, region_id, is_active) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, org.Name, org.RegionID, org.IsActive).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

// Update rewrites name and region.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	const q = `UPDATE organizations SET name = $2, region_id = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, org.ID, org.Name, org.RegionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

// SetActive toggles an organization.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE organizations SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

// Delete removes an organization. Members keep their accounts with
// organization_id set to NULL.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}
