package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gramkatha/backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrRoleExists   = errors.New("role already exists")
)

// userCols is the canonical scan order for user rows with the role joined.
const userCols = `u.id, u.name, u.email, u.password_hash, u.role_id,
	COALESCE(r.role_name, ''), COALESCE(r.kind, 'unknown'),
	u.organization_id, u.region_id, u.is_active, u.created_at, u.updated_at`

const userBase = `SELECT ` + userCols + ` FROM users u LEFT JOIN roles r ON r.id = u.role_id`

// Repository handles user and role persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.RoleName, &u.RoleKind, &u.OrganizationID, &u.RegionID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns a user with role metadata, or (nil, nil) when absent.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userBase+` WHERE u.id = $1`, id))
}

// List returns users, optionally filtered by organization and role.
func (r *Repository) List(ctx context.Context, orgID, roleID *uuid.UUID) ([]models.User, error) {
	q := userBase
	var args []any
	if orgID != nil {
		args = append(args, *orgID)
		q += ` WHERE u.organization_id = $1`
	}
	if roleID != nil {
		args = append(args, *roleID)
		if len(args) == 1 {
			q += ` WHERE u.role_id = $1`
		} else {
			q += ` AND u.role_id = $2`
		}
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY u.name, u.email`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID,
			&u.RoleName, &u.RoleKind, &u.OrganizationID, &u.RegionID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Create inserts a user. A duplicate email comes back as ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	const q = `INSERT INTO users (name, email, password_hash, role_id, organization_id, region_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, u.Name, u.Email, u.PasswordHash, u.RoleID, u.OrganizationID, u.RegionID, u.IsActive).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

// Update rewrites the user's profile and assignments. The password hash is
// untouched; use SetPassword for that.
func (r *Repository) Update(ctx context.Context, u *models.User) error {
	const q = `UPDATE users SET name = $2, email = $3, role_id = $4,
		organization_id = $5, region_id = $6, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, u.ID, u.Name, u.Email, u.RoleID, u.OrganizationID, u.RegionID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetPassword replaces the stored password hash.
func (r *Repository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive toggles the account flag. Inactive users fail authentication at
// the permission guard.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user. Authored stories survive with user_id set to NULL.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListRoles returns all roles.
func (r *Repository) ListRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, role_name, kind, created_at, updated_at FROM roles ORDER BY role_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.RoleName, &role.Kind, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// CreateRole inserts a role. The kind is derived from the display name once,
// here, and never re-parsed at decision points.
func (r *Repository) CreateRole(ctx context.Context, roleName string) (*models.Role, error) {
	role := models.Role{RoleName: roleName, Kind: models.ParseRoleKind(roleName)}
	const q = `INSERT INTO roles (role_name, kind) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, role.RoleName, role.Kind).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrRoleExists
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
