package stories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/access"
	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/slug"
)

// maxSlugAttempts bounds the collision retry loop on submission.
const maxSlugAttempts = 50

// Store is the persistence surface the workflow engine needs. Insert returns
// ErrSlugTaken on a slug unique-constraint violation. MarkPublished and
// MarkRejected are conditional updates: they only touch rows still in
// pending status and report whether a row was updated, so two concurrent
// review decisions cannot both win.
type Store interface {
	Insert(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	MarkPublished(ctx context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, approvedBy uuid.UUID, reason *string, at time.Time) (bool, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Directory looks up users. A missing user is (nil, nil), not an error.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PermissionChecker answers permission membership for a user.
type PermissionChecker interface {
	HasPermission(ctx context.Context, user *models.User, slug string) (bool, error)
}

// AccessChecker gates category write access and category existence.
type AccessChecker interface {
	CanWriteCategory(ctx context.Context, user *models.User, categoryID uuid.UUID) error
	ActiveCategoryExists(ctx context.Context, categoryID uuid.UUID) (bool, error)
}

// Recorder is the fire-and-forget audit sink.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, activityType, message string, metadata map[string]any)
}

// Service owns the story lifecycle: create -> pending -> published/rejected.
type Service struct {
	store    Store
	users    Directory
	perms    PermissionChecker
	access   AccessChecker
	activity Recorder
	logger   *zap.Logger
}

// NewService creates the story workflow service.
func NewService(store Store, users Directory, perms PermissionChecker, accessChecker AccessChecker, activity Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, users: users, perms: perms, access: accessChecker, activity: activity, logger: logger}
}

// SubmitInput carries the author-provided story fields.
type SubmitInput struct {
	CategoryID              uuid.UUID
	Title                   string
	Subtitle                *string
	PhotoURL                *string
	Quote                   *string
	PersonName              *string
	PersonLocation          *string
	FacilitatorName         *string
	FacilitatorOrganization *string
	Description             *string
	Content                 string
	Location                models.StoryLocation
}

// Submit creates a pending story. Only Writers may author, and only into
// active categories assigned to their organization.
func (s *Service) Submit(ctx context.Context, actorID uuid.UUID, in SubmitInput) (*models.Story, error) {
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrActorNotFound
	}
	if actor.Kind() != models.RoleWriter {
		return nil, fmt.Errorf("%w: only Writers can submit stories", ErrForbidden)
	}
	ok, err := s.perms.HasPermission(ctx, actor, models.PermPostStories)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing post_stories permission", ErrForbidden)
	}
	if err := s.access.CanWriteCategory(ctx, actor, in.CategoryID); err != nil {
		if errors.Is(err, access.ErrNoCategoryAccess) {
			return nil, fmt.Errorf("%w: category not assigned to your organization", ErrForbidden)
		}
		return nil, err
	}

	story := &models.Story{
		UserID:                  &actor.ID,
		CategoryID:              in.CategoryID,
		Title:                   in.Title,
		Status:                  models.StoryPending,
		Subtitle:                in.Subtitle,
		PhotoURL:                in.PhotoURL,
		Quote:                   in.Quote,
		PersonName:              in.PersonName,
		PersonLocation:          in.PersonLocation,
		FacilitatorName:         in.FacilitatorName,
		FacilitatorOrganization: in.FacilitatorOrganization,
		Description:             in.Description,
		Content:                 in.Content,
		Location:                in.Location,
	}

	// Slug uniqueness is enforced by the database constraint; a collision
	// retries with the next numeric suffix rather than pre-checking.
	base := slug.Make(in.Title)
	if base == "" {
		base = "story"
	}
	for n := 0; ; n++ {
		if n >= maxSlugAttempts {
			return nil, fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
		}
		story.Slug = slug.WithSuffix(base, n)
		err = s.store.Insert(ctx, story)
		if errors.Is(err, ErrSlugTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	s.record(ctx, actor.ID, "story_submitted", "Story submitted for review", map[string]any{
		"story_id": story.ID.String(),
		"title":    story.Title,
	})
	return story, nil
}

// Approve publishes a pending story. The transition is a conditional update:
// losing a race to another reviewer surfaces as ErrInvalidState.
func (s *Service) Approve(ctx context.Context, actorID, storyID uuid.UUID) (*models.Story, error) {
	story, actor, err := s.loadForReview(ctx, actorID, storyID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReview(ctx, actor, story); err != nil {
		return nil, err
	}
	ok, err := s.store.MarkPublished(ctx, story.ID, actor.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: story is not pending approval", ErrInvalidState)
	}
	s.record(ctx, actor.ID, "story_approved", "Story approved and published", map[string]any{
		"story_id": story.ID.String(),
		"title":    story.Title,
	})
	return s.store.GetByID(ctx, story.ID)
}

// Reject declines a pending story, recording who rejected it and why.
// published_at stays null.
func (s *Service) Reject(ctx context.Context, actorID, storyID uuid.UUID, reason *string) error {
	story, actor, err := s.loadForReview(ctx, actorID, storyID)
	if err != nil {
		return err
	}
	if err := s.authorizeReview(ctx, actor, story); err != nil {
		return err
	}
	ok, err := s.store.MarkRejected(ctx, story.ID, actor.ID, reason, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: story is not pending approval", ErrInvalidState)
	}
	s.record(ctx, actor.ID, "story_rejected", "Story rejected", map[string]any{
		"story_id": story.ID.String(),
		"title":    story.Title,
	})
	return nil
}

// EditInput carries partial-update fields; nil pointers leave the stored
// value untouched. The slug is never regenerated, so published URLs stay
// stable across title edits.
type EditInput struct {
	Title                   *string
	Subtitle                *string
	PhotoURL                *string
	Quote                   *string
	PersonName              *string
	PersonLocation          *string
	FacilitatorName         *string
	FacilitatorOrganization *string
	Description             *string
	Content                 *string
	CategoryID              *uuid.UUID
	Location                *models.StoryLocation
}

// Edit applies a partial update to a pending or published story. Rejected
// stories are immutable through this path.
func (s *Service) Edit(ctx context.Context, actorID, storyID uuid.UUID, in EditInput) (*models.Story, error) {
	story, err := s.store.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	actor, err := s.requireReviewer(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Kind() == models.RoleEditor {
		if err := s.requireSameOrgWriterAuthor(ctx, actor, story); err != nil {
			return nil, err
		}
	}
	if story.Status != models.StoryPublished && story.Status != models.StoryPending {
		return nil, fmt.Errorf("%w: only published or pending stories can be edited", ErrInvalidState)
	}

	if in.CategoryID != nil {
		active, err := s.access.ActiveCategoryExists(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, access.ErrCategoryNotFound
		}
		story.CategoryID = *in.CategoryID
	}
	if in.Title != nil {
		story.Title = *in.Title
	}
	if in.Subtitle != nil {
		story.Subtitle = in.Subtitle
	}
	if in.PhotoURL != nil {
		story.PhotoURL = in.PhotoURL
	}
	if in.Quote != nil {
		story.Quote = in.Quote
	}
	if in.PersonName != nil {
		story.PersonName = in.PersonName
	}
	if in.PersonLocation != nil {
		story.PersonLocation = in.PersonLocation
	}
	if in.FacilitatorName != nil {
		story.FacilitatorName = in.FacilitatorName
	}
	if in.FacilitatorOrganization != nil {
		story.FacilitatorOrganization = in.FacilitatorOrganization
	}
	if in.Description != nil {
		story.Description = in.Description
	}
	if in.Content != nil {
		story.Content = *in.Content
	}
	if in.Location != nil {
		story.Location = *in.Location
	}

	if err := s.store.Update(ctx, story); err != nil {
		return nil, err
	}
	s.record(ctx, actor.ID, "story_updated", "Story updated", map[string]any{
		"story_id": story.ID.String(),
	})
	return story, nil
}

// Delete removes a published story. This is the only way stories leave the
// system; pending and rejected stories are not deletable here.
func (s *Service) Delete(ctx context.Context, actorID, storyID uuid.UUID) error {
	story, err := s.store.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	actor, err := s.requireReviewer(ctx, actorID)
	if err != nil {
		return err
	}
	if story.Status != models.StoryPublished {
		return fmt.Errorf("%w: only published stories can be deleted", ErrInvalidState)
	}
	if err := s.store.Delete(ctx, story.ID); err != nil {
		return err
	}
	s.record(ctx, actor.ID, "story_deleted", "Story deleted", map[string]any{
		"story_id": story.ID.String(),
		"title":    story.Title,
	})
	return nil
}

func (s *Service) loadForReview(ctx context.Context, actorID, storyID uuid.UUID) (*models.Story, *models.User, error) {
	story, err := s.store.GetByID(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if actor == nil {
		return nil, nil, ErrActorNotFound
	}
	if story.Status != models.StoryPending {
		return nil, nil, fmt.Errorf("%w: story is not pending approval", ErrInvalidState)
	}
	return story, actor, nil
}

// authorizeReview enforces the approval invariant: Super admins with the
// manage permission may decide any story; Editors with the permission may
// decide stories authored by Writers in their own organization. No other
// role qualifies.
func (s *Service) authorizeReview(ctx context.Context, actor *models.User, story *models.Story) error {
	ok, err := s.perms.HasPermission(ctx, actor, models.PermManageStoryCategories)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing review permission", ErrForbidden)
	}
	switch actor.Kind() {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleEditor:
		return s.requireSameOrgWriterAuthor(ctx, actor, story)
	default:
		return fmt.Errorf("%w: role may not review stories", ErrForbidden)
	}
}

// requireReviewer loads the actor and checks the manage permission shared by
// the edit and delete paths.
func (s *Service) requireReviewer(ctx context.Context, actorID uuid.UUID) (*models.User, error) {
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrActorNotFound
	}
	ok, err := s.perms.HasPermission(ctx, actor, models.PermManageStoryCategories)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing review permission", ErrForbidden)
	}
	return actor, nil
}

func (s *Service) requireSameOrgWriterAuthor(ctx context.Context, actor *models.User, story *models.Story) error {
	if story.UserID == nil {
		return ErrAuthorNotFound
	}
	author, err := s.users.GetUser(ctx, *story.UserID)
	if err != nil {
		return err
	}
	if author == nil {
		return ErrAuthorNotFound
	}
	if actor.OrganizationID == nil || author.OrganizationID == nil || *actor.OrganizationID != *author.OrganizationID {
		return fmt.Errorf("%w: story author is outside your organization", ErrForbidden)
	}
	if author.Kind() != models.RoleWriter {
		return fmt.Errorf("%w: story author is not a Writer", ErrForbidden)
	}
	return nil
}

// record is fire-and-forget: audit failures are the sink's problem, not the
// caller's.
func (s *Service) record(ctx context.Context, userID uuid.UUID, activityType, message string, metadata map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, userID, activityType, message, metadata)
}
