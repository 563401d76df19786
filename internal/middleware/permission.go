package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/response"
)

// UserDirectory loads user records for permission checks.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PermissionSource answers permission membership for a user.
type PermissionSource interface {
	HasPermission(ctx context.Context, user *models.User, slug string) (bool, error)
	HasAnyPermission(ctx context.Context, user *models.User, slugs ...string) (bool, error)
}

// RequirePermission returns a guard that loads the authenticated user,
// rejects inactive accounts, and requires the given permission slug. The
// loaded user is stashed under ContextUser for the handler.
func RequirePermission(dir UserDirectory, perms PermissionSource, slug string) gin.HandlerFunc {
	return requirePerms(dir, func(ctx context.Context, user *models.User) (bool, error) {
		return perms.HasPermission(ctx, user, slug)
	})
}

// RequireAnyPermission is like RequirePermission but passes when the user
// holds at least one of the slugs.
func RequireAnyPermission(dir UserDirectory, perms PermissionSource, slugs ...string) gin.HandlerFunc {
	return requirePerms(dir, func(ctx context.Context, user *models.User) (bool, error) {
		return perms.HasAnyPermission(ctx, user, slugs...)
	})
}

func requirePerms(dir UserDirectory, check func(context.Context, *models.User) (bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(ContextUserID).(uuid.UUID)
		user, err := dir.GetUser(c.Request.Context(), userID)
		if err != nil {
			response.Internal(c, "failed to load user")
			c.Abort()
			return
		}
		if user == nil || !user.IsActive {
			response.Unauthorized(c, "account is not active")
			c.Abort()
			return
		}
		ok, err := check(c.Request.Context(), user)
		if err != nil {
			response.Internal(c, "failed to check permissions")
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by a permission guard, or nil when no
// guard ran on this route.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
