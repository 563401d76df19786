package stories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gramkatha/backend/internal/models"
)

// storyCols is the canonical scan order for stories rows. Every query that
// produces a story selects exactly these columns in this order.
const storyCols = `s.id, s.user_id, s.category_id, s.title, s.slug, s.status,
	s.subtitle, s.photo_url, s.quote, s.person_name, s.person_location,
	s.facilitator_name, s.facilitator_organization, s.description, s.content,
	s.state_id, s.state_name, s.district_id, s.district_name,
	s.sub_district_id, s.sub_district_name, s.block_id, s.block_name,
	s.panchayat_id, s.panchayat_name, s.village_id, s.village_name,
	s.latitude, s.longitude,
	s.approved_by, s.approved_at, s.published_at, s.rejection_reason,
	s.created_at, s.updated_at`

// detailBase joins in author, category and approver display fields. The
// roles join backs organization scoping; conditions on it turn the left
// joins effectively inner.
const detailBase = `SELECT ` + storyCols + `,
	u.id, u.name, u.email, c.name, ap.name, ap.email
	FROM stories s
	LEFT JOIN users u ON u.id = s.user_id
	LEFT JOIN roles ur ON ur.id = u.role_id
	JOIN story_categories c ON c.id = s.category_id
	LEFT JOIN users ap ON ap.id = s.approved_by`

// publicBase fans stories out per category region, selecting the region pair
// on top of the detail columns. The collapse back to one row per story
// happens in Go.
const publicBase = `SELECT ` + storyCols + `,
	u.id, u.name, u.email, c.name, ap.name, ap.email, reg.id, reg.name
	FROM stories s
	LEFT JOIN users u ON u.id = s.user_id
	LEFT JOIN roles ur ON ur.id = u.role_id
	JOIN story_categories c ON c.id = s.category_id
	LEFT JOIN users ap ON ap.id = s.approved_by
	LEFT JOIN category_regions cr ON cr.category_id = s.category_id
	LEFT JOIN regions reg ON reg.id = cr.region_id`

// wherePublished is the status predicate every public read starts from.
const wherePublished = ` WHERE s.status = 'published'`

// orderNewestFirst sorts the review queue and author listings by submission
// time, latest on top.
const orderNewestFirst = ` ORDER BY s.created_at DESC`

// Repository handles story persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a story repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func storyDest(st *models.Story) []any {
	return []any{
		&st.ID, &st.UserID, &st.CategoryID, &st.Title, &st.Slug, &st.Status,
		&st.Subtitle, &st.PhotoURL, &st.Quote, &st.PersonName, &st.PersonLocation,
		&st.FacilitatorName, &st.FacilitatorOrganization, &st.Description, &st.Content,
		&st.Location.StateID, &st.Location.StateName, &st.Location.DistrictID, &st.Location.DistrictName,
		&st.Location.SubDistrictID, &st.Location.SubDistrictName, &st.Location.BlockID, &st.Location.BlockName,
		&st.Location.PanchayatID, &st.Location.PanchayatName, &st.Location.VillageID, &st.Location.VillageName,
		&st.Location.Latitude, &st.Location.Longitude,
		&st.ApprovedBy, &st.ApprovedAt, &st.PublishedAt, &st.RejectionReason,
		&st.CreatedAt, &st.UpdatedAt,
	}
}

func detailDest(d *models.StoryDetail) []any {
	dest := storyDest(&d.Story)
	return append(dest, &d.AuthorID, &d.AuthorName, &d.AuthorEmail, &d.CategoryName, &d.ApproverName, &d.ApproverEmail)
}

func publicDest(d *models.StoryDetail) []any {
	return append(detailDest(d), &d.RegionID, &d.RegionName)
}

// Insert persists a new story. A slug unique-constraint violation comes back
// as ErrSlugTaken so the caller can retry with the next suffix.
func (r *Repository) Insert(ctx context.Context, st *models.Story) error {
	const q = `INSERT INTO stories (user_id, category_id, title, slug, status,
		subtitle, photo_url, quote, person_name, person_location,
		facilitator_name, facilitator_organization, description, content,
		state_id, state_name, district_id, district_name,
		sub_district_id, sub_district_name, block_id, block_name,
		panchayat_id, panchayat_name, village_id, village_name,
		latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q,
		st.UserID, st.CategoryID, st.Title, st.Slug, st.Status,
		st.Subtitle, st.PhotoURL, st.Quote, st.PersonName, st.PersonLocation,
		st.FacilitatorName, st.FacilitatorOrganization, st.Description, st.Content,
		st.Location.StateID, st.Location.StateName, st.Location.DistrictID, st.Location.DistrictName,
		st.Location.SubDistrictID, st.Location.SubDistrictName, st.Location.BlockID, st.Location.BlockName,
		st.Location.PanchayatID, st.Location.PanchayatName, st.Location.VillageID, st.Location.VillageName,
		st.Location.Latitude, st.Location.Longitude,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "stories_slug_key" {
		return ErrSlugTaken
	}
	return err
}

// GetByID returns a story by ID regardless of status.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	q := `SELECT ` + storyCols + ` FROM stories s WHERE s.id = $1`
	var st models.Story
	err := r.pool.QueryRow(ctx, q, id).Scan(storyDest(&st)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// MarkPublished transitions a pending story to published. The status guard
// in the WHERE clause makes the decision atomic; zero rows means the story
// already left pending.
func (r *Repository) MarkPublished(ctx context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error) {
	const q = `UPDATE stories
		SET status = 'published', approved_by = $2, approved_at = $3, published_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, q, id, approvedBy, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkRejected transitions a pending story to rejected. published_at stays
// null for rejected stories.
func (r *Repository) MarkRejected(ctx context.Context, id, approvedBy uuid.UUID, reason *string, at time.Time) (bool, error) {
	const q = `UPDATE stories
		SET status = 'rejected', approved_by = $2, approved_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, q, id, approvedBy, reason, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Update rewrites the editable fields. Status and slug are intentionally
// absent from the SET list.
func (r *Repository) Update(ctx context.Context, st *models.Story) error {
	const q = `UPDATE stories SET category_id = $2, title = $3,
		subtitle = $4, photo_url = $5, quote = $6, person_name = $7, person_location = $8,
		facilitator_name = $9, facilitator_organization = $10, description = $11, content = $12,
		state_id = $13, state_name = $14, district_id = $15, district_name = $16,
		sub_district_id = $17, sub_district_name = $18, block_id = $19, block_name = $20,
		panchayat_id = $21, panchayat_name = $22, village_id = $23, village_name = $24,
		latitude = $25, longitude = $26, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		st.ID, st.CategoryID, st.Title,
		st.Subtitle, st.PhotoURL, st.Quote, st.PersonName, st.PersonLocation,
		st.FacilitatorName, st.FacilitatorOrganization, st.Description, st.Content,
		st.Location.StateID, st.Location.StateName, st.Location.DistrictID, st.Location.DistrictName,
		st.Location.SubDistrictID, st.Location.SubDistrictName, st.Location.BlockID, st.Location.BlockName,
		st.Location.PanchayatID, st.Location.PanchayatName, st.Location.VillageID, st.Location.VillageName,
		st.Location.Latitude, st.Location.Longitude,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStoryNotFound
	}
	return nil
}

// Delete removes a story by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM stories WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStoryNotFound
	}
	return nil
}

// scopeCond appends the organization scope to a WHERE fragment. Scoped reads
// only see stories authored by Writers of the scope's organization.
func scopeCond(where string, scope Scope, args []any) (string, []any) {
	if !scope.Restricted() {
		return where, args
	}
	args = append(args, *scope.OrganizationID)
	return where + ` AND u.organization_id = $` + strconv.Itoa(len(args)) + ` AND ur.kind = 'writer'`, args
}

func (r *Repository) listDetails(ctx context.Context, query string, args ...any) ([]models.StoryDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.StoryDetail
	for rows.Next() {
		var d models.StoryDetail
		if err := rows.Scan(detailDest(&d)...); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListPending returns the review queue, newest submission first.
func (r *Repository) ListPending(ctx context.Context, scope Scope) ([]models.StoryDetail, error) {
	where, args := scopeCond(` WHERE s.status = 'pending'`, scope, nil)
	return r.listDetails(ctx, detailBase+where+orderNewestFirst, args...)
}

// CountPending returns the size of the review queue under the scope.
func (r *Repository) CountPending(ctx context.Context, scope Scope) (int, error) {
	q := `SELECT COUNT(*) FROM stories s
		LEFT JOIN users u ON u.id = s.user_id
		LEFT JOIN roles ur ON ur.id = u.role_id`
	where, args := scopeCond(` WHERE s.status = 'pending'`, scope, nil)
	var n int
	err := r.pool.QueryRow(ctx, q+where, args...).Scan(&n)
	return n, err
}

// ListApproved returns published stories under the scope, newest first.
func (r *Repository) ListApproved(ctx context.Context, scope Scope) ([]models.StoryDetail, error) {
	where, args := scopeCond(wherePublished, scope, nil)
	return r.listDetails(ctx, detailBase+where+` ORDER BY s.published_at DESC`, args...)
}

// ListApprovedBy returns published stories approved by the given reviewer,
// under the viewer's scope.
func (r *Repository) ListApprovedBy(ctx context.Context, reviewerID uuid.UUID, scope Scope) ([]models.StoryDetail, error) {
	where, args := scopeCond(wherePublished+` AND s.approved_by = $1`, scope, []any{reviewerID})
	return r.listDetails(ctx, detailBase+where+` ORDER BY s.published_at DESC`, args...)
}

// ListByAuthor returns all of an author's stories in every status.
func (r *Repository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.StoryDetail, error) {
	q := detailBase + ` WHERE s.user_id = $1` + orderNewestFirst
	return r.listDetails(ctx, q, authorID)
}

func (r *Repository) listPublic(ctx context.Context, where string, args ...any) ([]models.StoryDetail, error) {
	q := publicBase + where + ` ORDER BY s.published_at DESC, s.id, reg.name`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fanned []models.StoryDetail
	for rows.Next() {
		var d models.StoryDetail
		if err := rows.Scan(publicDest(&d)...); err != nil {
			return nil, err
		}
		fanned = append(fanned, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collapseRegionFanout(fanned), nil
}

// collapseRegionFanout reduces the per-region fanout back to one row per
// story, keeping the first region encountered in query order.
func collapseRegionFanout(fanned []models.StoryDetail) []models.StoryDetail {
	seen := make(map[uuid.UUID]struct{}, len(fanned))
	var out []models.StoryDetail
	for _, d := range fanned {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}

// ListPublished returns published stories for public consumption, optionally
// filtered by category.
func (r *Repository) ListPublished(ctx context.Context, categoryID *uuid.UUID) ([]models.StoryDetail, error) {
	where := wherePublished
	var args []any
	if categoryID != nil {
		args = append(args, *categoryID)
		where += ` AND s.category_id = $1`
	}
	return r.listPublic(ctx, where, args...)
}

// GetPublishedByID returns one published story for public consumption.
func (r *Repository) GetPublishedByID(ctx context.Context, id uuid.UUID) (*models.StoryDetail, error) {
	list, err := r.listPublic(ctx, wherePublished+` AND s.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrStoryNotFound
	}
	return &list[0], nil
}

// GetPublishedBySlug returns one published story by its slug.
func (r *Repository) GetPublishedBySlug(ctx context.Context, s string) (*models.StoryDetail, error) {
	list, err := r.listPublic(ctx, wherePublished+` AND s.slug = $1`, s)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrStoryNotFound
	}
	return &list[0], nil
}
