package stories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramkatha/backend/internal/access"
	"github.com/gramkatha/backend/internal/models"
)

// fakeStore keeps stories in memory and enforces the slug unique constraint
// and the conditional status transitions the way the SQL layer does.
type fakeStore struct {
	stories map[uuid.UUID]*models.Story
	slugs   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{stories: map[uuid.UUID]*models.Story{}, slugs: map[string]bool{}}
}

func (f *fakeStore) Insert(_ context.Context, st *models.Story) error {
	if f.slugs[st.Slug] {
		return ErrSlugTaken
	}
	st.ID = uuid.New()
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	cp := *st
	f.stories[st.ID] = &cp
	f.slugs[st.Slug] = true
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Story, error) {
	st, ok := f.stories[id]
	if !ok {
		return nil, ErrStoryNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStore) MarkPublished(_ context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error) {
	st, ok := f.stories[id]
	if !ok || st.Status != models.StoryPending {
		return false, nil
	}
	st.Status = models.StoryPublished
	st.ApprovedBy = &approvedBy
	st.ApprovedAt = &at
	st.PublishedAt = &at
	return true, nil
}

func (f *fakeStore) MarkRejected(_ context.Context, id, approvedBy uuid.UUID, reason *string, at time.Time) (bool, error) {
	st, ok := f.stories[id]
	if !ok || st.Status != models.StoryPending {
		return false, nil
	}
	st.Status = models.StoryRejected
	st.ApprovedBy = &approvedBy
	st.ApprovedAt = &at
	st.RejectionReason = reason
	return true, nil
}

func (f *fakeStore) Update(_ context.Context, st *models.Story) error {
	if _, ok := f.stories[st.ID]; !ok {
		return ErrStoryNotFound
	}
	cp := *st
	f.stories[st.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	st, ok := f.stories[id]
	if !ok {
		return ErrStoryNotFound
	}
	delete(f.slugs, st.Slug)
	delete(f.stories, id)
	return nil
}

type fakeDirectory struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeDirectory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

// fakePerms grants permissions per role kind, mirroring the seeded
// assignments.
type fakePerms struct{}

func (fakePerms) HasPermission(_ context.Context, user *models.User, slug string) (bool, error) {
	switch user.Kind() {
	case models.RoleSuperAdmin:
		return true, nil
	case models.RoleAdmin, models.RoleEditor:
		return slug == models.PermManageStoryCategories || slug == models.PermViewStories || slug == models.PermViewActivity, nil
	case models.RoleWriter:
		return slug == models.PermPostStories || slug == models.PermViewStories || slug == models.PermViewActivity, nil
	default:
		return false, nil
	}
}

type fakeAccess struct {
	active   map[uuid.UUID]bool
	assigned map[uuid.UUID]map[uuid.UUID]bool // orgID -> categoryID
}

func (f *fakeAccess) CanWriteCategory(_ context.Context, user *models.User, categoryID uuid.UUID) error {
	if !f.active[categoryID] {
		return access.ErrCategoryNotFound
	}
	if user.IsSuperAdmin() {
		return nil
	}
	if user.OrganizationID == nil || !f.assigned[*user.OrganizationID][categoryID] {
		return access.ErrNoCategoryAccess
	}
	return nil
}

func (f *fakeAccess) ActiveCategoryExists(_ context.Context, categoryID uuid.UUID) (bool, error) {
	return f.active[categoryID], nil
}

type recordedEvent struct {
	userID uuid.UUID
	typ    string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) Record(_ context.Context, userID uuid.UUID, activityType, _ string, _ map[string]any) {
	f.events = append(f.events, recordedEvent{userID: userID, typ: activityType})
}

// fixture wires a service over all fakes with one org, one category and the
// four role archetypes.
type fixture struct {
	svc      *Service
	store    *fakeStore
	dir      *fakeDirectory
	access   *fakeAccess
	recorder *fakeRecorder

	orgID      uuid.UUID
	otherOrgID uuid.UUID
	categoryID uuid.UUID

	writer         *models.User
	otherOrgWriter *models.User
	editor         *models.User
	otherOrgEditor *models.User
	admin          *models.User
	superAdmin     *models.User
}

func userWithKind(kind models.RoleKind, orgID *uuid.UUID) *models.User {
	roleID := uuid.New()
	return &models.User{
		ID:             uuid.New(),
		RoleID:         &roleID,
		RoleKind:       kind,
		OrganizationID: orgID,
		IsActive:       true,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      newFakeStore(),
		recorder:   &fakeRecorder{},
		orgID:      uuid.New(),
		otherOrgID: uuid.New(),
		categoryID: uuid.New(),
	}
	f.writer = userWithKind(models.RoleWriter, &f.orgID)
	f.otherOrgWriter = userWithKind(models.RoleWriter, &f.otherOrgID)
	f.editor = userWithKind(models.RoleEditor, &f.orgID)
	f.otherOrgEditor = userWithKind(models.RoleEditor, &f.otherOrgID)
	f.admin = userWithKind(models.RoleAdmin, &f.orgID)
	f.superAdmin = userWithKind(models.RoleSuperAdmin, nil)

	f.dir = &fakeDirectory{users: map[uuid.UUID]*models.User{}}
	for _, u := range []*models.User{f.writer, f.otherOrgWriter, f.editor, f.otherOrgEditor, f.admin, f.superAdmin} {
		f.dir.users[u.ID] = u
	}

	f.access = &fakeAccess{
		active: map[uuid.UUID]bool{f.categoryID: true},
		assigned: map[uuid.UUID]map[uuid.UUID]bool{
			f.orgID:      {f.categoryID: true},
			f.otherOrgID: {f.categoryID: true},
		},
	}
	f.svc = NewService(f.store, f.dir, fakePerms{}, f.access, f.recorder, nil)
	return f
}

func (f *fixture) submit(t *testing.T, author *models.User, title string) *models.Story {
	t.Helper()
	st, err := f.svc.Submit(context.Background(), author.ID, SubmitInput{
		CategoryID: f.categoryID,
		Title:      title,
		Content:    "body",
		Location:   models.StoryLocation{StateID: "11"},
	})
	require.NoError(t, err)
	return st
}

func TestSubmitCreatesPendingStory(t *testing.T) {
	f := newFixture(t)

	st := f.submit(t, f.writer, "A Well Returns to Rampur")

	assert.Equal(t, models.StoryPending, st.Status)
	assert.Equal(t, "a-well-returns-to-rampur", st.Slug)
	require.NotNil(t, st.UserID)
	assert.Equal(t, f.writer.ID, *st.UserID)
	assert.Nil(t, st.PublishedAt)
	require.Len(t, f.recorder.events, 1)
	assert.Equal(t, "story_submitted", f.recorder.events[0].typ)
}

func TestSubmitOnlyWriters(t *testing.T) {
	f := newFixture(t)

	for _, actor := range []*models.User{f.editor, f.admin, f.superAdmin} {
		_, err := f.svc.Submit(context.Background(), actor.ID, SubmitInput{
			CategoryID: f.categoryID, Title: "t", Content: "c",
		})
		assert.ErrorIs(t, err, ErrForbidden)
	}
}

func TestSubmitCategoryGate(t *testing.T) {
	f := newFixture(t)

	// unassigned category
	delete(f.access.assigned[f.orgID], f.categoryID)
	_, err := f.svc.Submit(context.Background(), f.writer.ID, SubmitInput{
		CategoryID: f.categoryID, Title: "t", Content: "c",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	// inactive category reads as not-found, not forbidden
	f.access.assigned[f.orgID] = map[uuid.UUID]bool{f.categoryID: true}
	f.access.active[f.categoryID] = false
	_, err = f.svc.Submit(context.Background(), f.writer.ID, SubmitInput{
		CategoryID: f.categoryID, Title: "t", Content: "c",
	})
	assert.ErrorIs(t, err, access.ErrCategoryNotFound)
}

func TestSubmitSlugCollisionRetries(t *testing.T) {
	f := newFixture(t)

	first := f.submit(t, f.writer, "Harvest Song")
	second := f.submit(t, f.writer, "Harvest Song")
	third := f.submit(t, f.writer, "Harvest Song")

	assert.Equal(t, "harvest-song", first.Slug)
	assert.Equal(t, "harvest-song-1", second.Slug)
	assert.Equal(t, "harvest-song-2", third.Slug)
}

func TestSubmitSlugFallback(t *testing.T) {
	f := newFixture(t)

	st := f.submit(t, f.writer, "!!!")
	assert.Equal(t, "story", st.Slug)
}

func TestApproveBySuperAdmin(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	published, err := f.svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoryPublished, published.Status)
	require.NotNil(t, published.ApprovedBy)
	assert.Equal(t, f.superAdmin.ID, *published.ApprovedBy)
	assert.NotNil(t, published.PublishedAt)
	assert.Equal(t, st.Slug, published.Slug)
}

func TestApproveByEditorSameOrg(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	published, err := f.svc.Approve(context.Background(), f.editor.ID, st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StoryPublished, published.Status)
}

func TestApproveByEditorOtherOrgForbidden(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	_, err := f.svc.Approve(context.Background(), f.otherOrgEditor.ID, st.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, _ := f.store.GetByID(context.Background(), st.ID)
	assert.Equal(t, models.StoryPending, got.Status, "failed approval must not change status")
}

func TestApproveByAdminForbidden(t *testing.T) {
	// Admins hold the review permission but the role itself does not
	// qualify; only super admins and in-org editors decide.
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	_, err := f.svc.Approve(context.Background(), f.admin.ID, st.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApproveNonPending(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	_, err := f.svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApproveLosesRace(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	// Another reviewer wins between the load and the conditional update.
	slow := &racingStore{fakeStore: f.store, winner: f.otherOrgEditor.ID}
	svc := NewService(slow, f.dir, fakePerms{}, f.access, f.recorder, nil)

	_, err := svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	got, _ := f.store.GetByID(context.Background(), st.ID)
	assert.Equal(t, models.StoryRejected, got.Status, "first decision stands")
}

// racingStore rejects the story just before every MarkPublished, simulating
// a concurrent reviewer.
type racingStore struct {
	*fakeStore
	winner uuid.UUID
}

func (r *racingStore) MarkPublished(ctx context.Context, id, approvedBy uuid.UUID, at time.Time) (bool, error) {
	_, _ = r.fakeStore.MarkRejected(ctx, id, r.winner, nil, at)
	return r.fakeStore.MarkPublished(ctx, id, approvedBy, at)
}

func TestRejectRecordsReasonAndIsTerminal(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")
	reason := "needs sources"

	err := f.svc.Reject(context.Background(), f.editor.ID, st.ID, &reason)
	require.NoError(t, err)

	got, _ := f.store.GetByID(context.Background(), st.ID)
	assert.Equal(t, models.StoryRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, reason, *got.RejectionReason)
	assert.Nil(t, got.PublishedAt, "rejected stories never get a publish timestamp")

	_, err = f.svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "rejected is terminal")
}

func TestEditKeepsSlugAndStatus(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "Original Title")
	_, err := f.svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	require.NoError(t, err)

	newTitle := "Completely Different Title"
	updated, err := f.svc.Edit(context.Background(), f.superAdmin.ID, st.ID, EditInput{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, "original-title", updated.Slug, "published URL stays stable")
	assert.Equal(t, models.StoryPublished, updated.Status)
}

func TestEditRejectedForbidden(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")
	require.NoError(t, f.svc.Reject(context.Background(), f.editor.ID, st.ID, nil))

	title := "x"
	_, err := f.svc.Edit(context.Background(), f.superAdmin.ID, st.ID, EditInput{Title: &title})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestEditCategoryMustBeActive(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	inactive := uuid.New()
	f.access.active[inactive] = false
	_, err := f.svc.Edit(context.Background(), f.superAdmin.ID, st.ID, EditInput{CategoryID: &inactive})
	assert.ErrorIs(t, err, access.ErrCategoryNotFound)
}

func TestEditByEditorScoped(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	title := "x"
	_, err := f.svc.Edit(context.Background(), f.otherOrgEditor.ID, st.ID, EditInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Edit(context.Background(), f.editor.ID, st.ID, EditInput{Title: &title})
	require.NoError(t, err)
}

func TestDeleteOnlyPublished(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	err := f.svc.Delete(context.Background(), f.superAdmin.ID, st.ID)
	assert.ErrorIs(t, err, ErrInvalidState, "pending stories are not deletable")

	_, err = f.svc.Approve(context.Background(), f.superAdmin.ID, st.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.superAdmin.ID, st.ID))
	_, err = f.store.GetByID(context.Background(), st.ID)
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestWriterCannotReview(t *testing.T) {
	f := newFixture(t)
	st := f.submit(t, f.writer, "t")

	_, err := f.svc.Approve(context.Background(), f.otherOrgWriter.ID, st.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.svc.Reject(context.Background(), f.otherOrgWriter.ID, st.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
