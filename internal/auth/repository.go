package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gramkatha/backend/internal/models"
)

// Repository handles credential lookups for login.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns the user with role metadata joined in, or (nil, nil)
// when no such user exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT u.id, u.name, u.email, u.password_hash, u.role_id,
		COALESCE(r.role_name, ''), COALESCE(r.kind, 'unknown'),
		u.organization_id, u.region_id, u.is_active, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.RoleName, &u.RoleKind, &u.OrganizationID, &u.RegionID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
