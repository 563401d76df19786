package rbac

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements Store against the role_permissions join table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an rbac repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RoleHasPermission reports whether an assignment row exists for (role, slug).
func (r *Repository) RoleHasPermission(ctx context.Context, roleID uuid.UUID, slug string) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM role_permissions rp
		INNER JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND p.slug = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, roleID, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// RoleHasAnyPermission reports whether the role holds any of the slugs.
func (r *Repository) RoleHasAnyPermission(ctx context.Context, roleID uuid.UUID, slugs []string) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM role_permissions rp
		INNER JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND p.slug = ANY($2))`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, roleID, slugs).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountRolePermissions counts how many of the given slugs the role holds.
func (r *Repository) CountRolePermissions(ctx context.Context, roleID uuid.UUID, slugs []string) (int, error) {
	const q = `SELECT COUNT(*) FROM role_permissions rp
		INNER JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND p.slug = ANY($2)`
	var n int
	if err := r.pool.QueryRow(ctx, q, roleID, slugs).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RolePermissions returns every permission slug assigned to the role.
func (r *Repository) RolePermissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	const q = `SELECT p.slug FROM role_permissions rp
		INNER JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.slug`
	rows, err := r.pool.Query(ctx, q, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}
