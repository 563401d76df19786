package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gramkatha/backend/internal/models"
)

type fakeDirectory struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeDirectory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

type fakePerms struct {
	granted map[string]bool
}

func (f *fakePerms) HasPermission(_ context.Context, _ *models.User, slug string) (bool, error) {
	return f.granted[slug], nil
}

func (f *fakePerms) HasAnyPermission(ctx context.Context, user *models.User, slugs ...string) (bool, error) {
	for _, s := range slugs {
		if ok, _ := f.HasPermission(ctx, user, s); ok {
			return true, nil
		}
	}
	return false, nil
}

func permRouter(dir UserDirectory, perms PermissionSource, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded",
		func(c *gin.Context) { c.Set(ContextUserID, userID) },
		RequirePermission(dir, perms, models.PermViewStories),
		func(c *gin.Context) {
			u := CurrentUser(c)
			c.JSON(http.StatusOK, gin.H{"user_id": u.ID})
		},
	)
	return r
}

func TestRequirePermission(t *testing.T) {
	userID := uuid.New()
	roleID := uuid.New()
	dir := &fakeDirectory{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, RoleID: &roleID, RoleKind: models.RoleWriter, IsActive: true},
	}}

	t.Run("granted", func(t *testing.T) {
		r := permRouter(dir, &fakePerms{granted: map[string]bool{models.PermViewStories: true}}, userID)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("denied", func(t *testing.T) {
		r := permRouter(dir, &fakePerms{granted: map[string]bool{}}, userID)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		dir.users[userID].IsActive = false
		defer func() { dir.users[userID].IsActive = true }()
		r := permRouter(dir, &fakePerms{granted: map[string]bool{models.PermViewStories: true}}, userID)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deleted account", func(t *testing.T) {
		r := permRouter(dir, &fakePerms{granted: map[string]bool{models.PermViewStories: true}}, uuid.New())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
