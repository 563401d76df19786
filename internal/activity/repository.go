package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gramkatha/backend/internal/models"
)

// Repository handles activity persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an activity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores one activity entry. Metadata round-trips through jsonb.
func (r *Repository) Insert(ctx context.Context, a *models.Activity) error {
	const q = `INSERT INTO activities (user_id, type, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		RETURNING id, created_at`
	var at any
	if !a.CreatedAt.IsZero() {
		at = a.CreatedAt
	}
	return r.pool.QueryRow(ctx, q, a.UserID, a.Type, a.Message, a.Metadata, at).
		Scan(&a.ID, &a.CreatedAt)
}

// ListForUser returns the user's newest activities, capped at limit.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `SELECT id, user_id, type, message, metadata, created_at
		FROM activities WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Message, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
