package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramkatha/backend/internal/models"
)

type fakeStore struct {
	active      map[uuid.UUID]bool
	assignments map[uuid.UUID][]uuid.UUID // org -> categories
}

func (f *fakeStore) ActiveCategoryExists(_ context.Context, categoryID uuid.UUID) (bool, error) {
	return f.active[categoryID], nil
}

func (f *fakeStore) OrganizationHasCategory(_ context.Context, orgID, categoryID uuid.UUID) (bool, error) {
	for _, c := range f.assignments[orgID] {
		if c == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CategoriesForOrganization(context.Context, uuid.UUID) ([]models.StoryCategory, error) {
	return nil, nil
}

func (f *fakeStore) OrganizationsForCategory(context.Context, uuid.UUID) ([]models.Organization, error) {
	return nil, nil
}

func writer(orgID *uuid.UUID) *models.User {
	roleID := uuid.New()
	return &models.User{ID: uuid.New(), RoleID: &roleID, RoleKind: models.RoleWriter, OrganizationID: orgID}
}

func TestCanWriteCategory(t *testing.T) {
	catID := uuid.New()
	inactiveID := uuid.New()
	orgID := uuid.New()
	otherOrgID := uuid.New()

	store := &fakeStore{
		active:      map[uuid.UUID]bool{catID: true, inactiveID: false},
		assignments: map[uuid.UUID][]uuid.UUID{orgID: {catID}},
	}
	r := NewResolver(store)
	ctx := context.Background()

	t.Run("assigned org may write", func(t *testing.T) {
		require.NoError(t, r.CanWriteCategory(ctx, writer(&orgID), catID))
	})

	t.Run("unassigned org is refused", func(t *testing.T) {
		err := r.CanWriteCategory(ctx, writer(&otherOrgID), catID)
		assert.ErrorIs(t, err, ErrNoCategoryAccess)
	})

	t.Run("no organization is refused", func(t *testing.T) {
		err := r.CanWriteCategory(ctx, writer(nil), catID)
		assert.ErrorIs(t, err, ErrNoCategoryAccess)
	})

	t.Run("inactive category fails closed as not found", func(t *testing.T) {
		err := r.CanWriteCategory(ctx, writer(&orgID), inactiveID)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("missing category is not found", func(t *testing.T) {
		err := r.CanWriteCategory(ctx, writer(&orgID), uuid.New())
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("super admin bypasses assignment but not inactive", func(t *testing.T) {
		roleID := uuid.New()
		admin := &models.User{ID: uuid.New(), RoleID: &roleID, RoleKind: models.RoleSuperAdmin}
		require.NoError(t, r.CanWriteCategory(ctx, admin, catID))
		assert.ErrorIs(t, r.CanWriteCategory(ctx, admin, inactiveID), ErrCategoryNotFound)
	})
}
