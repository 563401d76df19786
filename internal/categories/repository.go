package categories

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
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameTaken        = errors.New("category name already exists")
	// ErrCategoryInUse means stories still reference the category; the
	// RESTRICT foreign key blocks the delete.
	ErrCategoryInUse = errors.New("category has stories")
)

// Repository handles story category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a category repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns categories, optionally including inactive ones, with their
// region assignments attached.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]models.StoryCategory, error) {
	q := `SELECT id, name, description, is_active, created_at, updated_at FROM story_categories`
	if !includeInactive {
		q += ` WHERE is_active`
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.StoryCategory
	for rows.Next() {
		var cat models.StoryCategory
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachRegions(ctx, list)
}

// attachRegions loads region assignments for the given categories in one
// query.
func (r *Repository) attachRegions(ctx context.Context, list []models.StoryCategory) ([]models.StoryCategory, error) {
	if len(list) == 0 {
		return list, nil
	}
	ids := make([]uuid.UUID, len(list))
	index := make(map[uuid.UUID]int, len(list))
	for i, cat := range list {
		ids[i] = cat.ID
		index[cat.ID] = i
	}
	const q = `SELECT cr.category_id, rg.id, rg.name, rg.created_at
		FROM category_regions cr
		JOIN regions rg ON rg.id = cr.region_id
		WHERE cr.category_id = ANY($1)
		ORDER BY rg.name`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var catID uuid.UUID
		var reg models.Region
		if err := rows.Scan(&catID, &reg.ID, &reg.Name, &reg.CreatedAt); err != nil {
			return nil, err
		}
		i := index[catID]
		list[i].Regions = append(list[i].Regions, reg)
	}
	return list, rows.Err()
}

// Get returns a category with its regions, or ErrCategoryNotFound.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.StoryCategory, error) {
	const q = `SELECT id, name, description, is_active, created_at, updated_at
		FROM story_categories WHERE id = $1`
	var cat models.StoryCategory
	err := r.pool.QueryRow(ctx, q, id).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	list, err := r.attachRegions(ctx, []models.StoryCategory{cat})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create inserts a category and its initial region and organization
// assignments in one transaction.
func (r *Repository) Create(ctx context.Context, cat *models.StoryCategory, regionIDs, orgIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO story_categories (name, description, is_active)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, q, cat.Name, cat.Description, cat.IsActive).Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	if err != nil {
		return err
	}
	if err := syncAssignments(ctx, tx, "category_regions", "region_id", cat.ID, regionIDs); err != nil {
		return err
	}
	if err := syncAssignments(ctx, tx, "category_organizations", "organization_id", cat.ID, orgIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites name and description.
func (r *Repository) Update(ctx context.Context, cat *models.StoryCategory) error {
	const q = `UPDATE story_categories SET name = $2, description = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, cat.ID, cat.Name, cat.Description)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// SetActive toggles a category. Deactivating blocks new submissions but
// leaves published stories visible.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE story_categories SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category. Categories with stories cannot be deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM story_categories WHERE id = $1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrCategoryInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// SetOrganizations replaces the category's organization assignments.
func (r *Repository) SetOrganizations(ctx context.Context, id uuid.UUID, orgIDs []uuid.UUID) error {
	return r.replaceAssignments(ctx, id, "category_organizations", "organization_id", orgIDs)
}

// SetRegions replaces the category's region assignments.
func (r *Repository) SetRegions(ctx context.Context, id uuid.UUID, regionIDs []uuid.UUID) error {
	return r.replaceAssignments(ctx, id, "category_regions", "region_id", regionIDs)
}

func (r *Repository) replaceAssignments(ctx context.Context, id uuid.UUID, table, col string, targetIDs []uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM story_categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrCategoryNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE category_id = $1`, id); err != nil {
		return err
	}
	if err := syncAssignments(ctx, tx, table, col, id, targetIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func syncAssignments(ctx context.Context, tx pgx.Tx, table, col string, categoryID uuid.UUID, targetIDs []uuid.UUID) error {
	for _, targetID := range targetIDs {
		q := `INSERT INTO ` + table + ` (category_id, ` + col + `) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, q, categoryID, targetID); err != nil {
			return err
		}
	}
	return nil
}
