// Package regions serves the small read-mostly region reference data.
package regions

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/response"
)

var ErrRegionExists = errors.New("region already exists")

// Repository handles region persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a region repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all regions.
func (r *Repository) List(ctx context.Context) ([]models.Region, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Region
	for rows.Next() {
		var reg models.Region
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// Create inserts a region.
func (r *Repository) Create(ctx context.Context, name string) (*models.Region, error) {
	var reg models.Region
	reg.Name = name
	err := r.pool.QueryRow(ctx, `INSERT INTO regions (name) VALUES ($1) RETURNING id, created_at`, name).
		Scan(&reg.ID, &reg.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrRegionExists
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Handler handles region HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a region handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /regions.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list regions failed", zap.Error(err))
		response.Internal(c, "failed to list regions")
		return
	}
	response.OK(c, list)
}

// Create handles POST /regions.
func (h *Handler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reg, err := h.repo.Create(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, ErrRegionExists) {
			response.Conflict(c, "region already exists")
			return
		}
		h.logger.Error("create region failed", zap.Error(err))
		response.Internal(c, "failed to create region")
		return
	}
	response.Created(c, reg)
}
