package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramkatha/backend/internal/models"
)

// fakeStore holds role -> permission slugs in memory.
type fakeStore struct {
	perms map[uuid.UUID][]string
}

func (f *fakeStore) RoleHasPermission(_ context.Context, roleID uuid.UUID, slug string) (bool, error) {
	for _, s := range f.perms[roleID] {
		if s == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) RoleHasAnyPermission(ctx context.Context, roleID uuid.UUID, slugs []string) (bool, error) {
	for _, s := range slugs {
		if ok, _ := f.RoleHasPermission(ctx, roleID, s); ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountRolePermissions(ctx context.Context, roleID uuid.UUID, slugs []string) (int, error) {
	n := 0
	for _, s := range slugs {
		if ok, _ := f.RoleHasPermission(ctx, roleID, s); ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) RolePermissions(_ context.Context, roleID uuid.UUID) ([]string, error) {
	return f.perms[roleID], nil
}

func TestResolverNoRole(t *testing.T) {
	r := NewResolver(&fakeStore{perms: map[uuid.UUID][]string{}})
	ctx := context.Background()

	ok, err := r.HasPermission(ctx, nil, models.PermManageUsers)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.HasPermission(ctx, &models.User{}, models.PermManageUsers)
	require.NoError(t, err)
	assert.False(t, ok, "user without role holds no permissions")

	perms, err := r.UserPermissions(ctx, &models.User{})
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolverMembership(t *testing.T) {
	roleID := uuid.New()
	r := NewResolver(&fakeStore{perms: map[uuid.UUID][]string{
		roleID: {models.PermManageStoryCategories, models.PermViewStories},
	}})
	user := &models.User{ID: uuid.New(), RoleID: &roleID}
	ctx := context.Background()

	ok, err := r.HasPermission(ctx, user, models.PermManageStoryCategories)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.HasPermission(ctx, user, models.PermManageUsers)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.HasAnyPermission(ctx, user, models.PermManageUsers, models.PermViewStories)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.HasAllPermissions(ctx, user, models.PermManageStoryCategories, models.PermViewStories)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.HasAllPermissions(ctx, user, models.PermManageStoryCategories, models.PermManageUsers)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.HasAnyPermission(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok, "empty slug list never matches")
}
