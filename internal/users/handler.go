package users

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/middleware"
	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/response"
	"github.com/gramkatha/backend/pkg/utils"
)

// CreateRequest is the body for POST /users.
type CreateRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	RoleID         *string `json:"role_id"`
	OrganizationID *string `json:"organization_id"`
	RegionID       *string `json:"region_id"`
}

// UpdateRequest is the body for PUT /users/:id. Nil fields keep the stored
// value.
type UpdateRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	RoleID         *string `json:"role_id"`
	OrganizationID *string `json:"organization_id"`
	RegionID       *string `json:"region_id"`
}

// PermissionLister resolves the permission slugs a user holds.
type PermissionLister interface {
	UserPermissions(ctx context.Context, user *models.User) ([]string, error)
}

// Recorder is the fire-and-forget audit sink.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, activityType, message string, metadata map[string]any)
}

// Handler handles user management HTTP endpoints.
type Handler struct {
	repo     *Repository
	perms    PermissionLister
	activity Recorder
	logger   *zap.Logger
}

// NewHandler creates a user handler.
func NewHandler(repo *Repository, perms PermissionLister, activity Recorder, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, perms: perms, activity: activity, logger: logger}
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	user, err := h.repo.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("me lookup failed", zap.Error(err))
		response.Internal(c, "failed to load profile")
		return
	}
	if user == nil {
		response.Unauthorized(c, "account no longer exists")
		return
	}
	perms, err := h.perms.UserPermissions(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("permission lookup failed", zap.Error(err))
		response.Internal(c, "failed to load profile")
		return
	}
	response.OK(c, gin.H{"user": user, "permissions": perms})
}

// List handles GET /users. Optional ?organization_id= and ?role_id= filters.
func (h *Handler) List(c *gin.Context) {
	orgID, ok := optionalUUIDQuery(c, "organization_id")
	if !ok {
		return
	}
	roleID, ok := optionalUUIDQuery(c, "role_id")
	if !ok {
		return
	}
	list, err := h.repo.List(c.Request.Context(), orgID, roleID)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.repo.GetUser(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user)
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	roleID, ok := parseOptionalUUID(c, req.RoleID, "role_id")
	if !ok {
		return
	}
	orgID, ok := parseOptionalUUID(c, req.OrganizationID, "organization_id")
	if !ok {
		return
	}
	regionID, ok := parseOptionalUUID(c, req.RegionID, "region_id")
	if !ok {
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}
	user := &models.User{
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		RoleID:         roleID,
		OrganizationID: orgID,
		RegionID:       regionID,
		IsActive:       true,
	}
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(c.Request.Context(), actorID, "user_created", "User account created", map[string]any{
		"target_user_id": user.ID.String(),
		"email":          user.Email,
	})
	response.Created(c, user)
}

// Update handles PUT /users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.repo.GetUser(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.RoleID != nil {
		roleID, ok := parseOptionalUUID(c, req.RoleID, "role_id")
		if !ok {
			return
		}
		user.RoleID = roleID
	}
	if req.OrganizationID != nil {
		orgID, ok := parseOptionalUUID(c, req.OrganizationID, "organization_id")
		if !ok {
			return
		}
		user.OrganizationID = orgID
	}
	if req.RegionID != nil {
		regionID, ok := parseOptionalUUID(c, req.RegionID, "region_id")
		if !ok {
			return
		}
		user.RegionID = regionID
	}

	if err := h.repo.Update(c.Request.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("update user failed", zap.Error(err))
		response.Internal(c, "failed to update user")
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(c.Request.Context(), actorID, "user_updated", "User account updated", map[string]any{
		"target_user_id": user.ID.String(),
	})
	updated, _ := h.repo.GetUser(c.Request.Context(), id)
	response.OK(c, updated)
}

// SetActive handles PATCH /users/:id/active.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("set active failed", zap.Error(err))
		response.Internal(c, "failed to update user")
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": *req.IsActive})
}

// Delete handles DELETE /users/:id. Authored stories survive the deletion.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if id == actorID {
		response.BadRequest(c, "cannot delete your own account")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		response.Internal(c, "failed to delete user")
		return
	}
	h.activity.Record(c.Request.Context(), actorID, "user_deleted", "User account deleted", map[string]any{
		"target_user_id": id.String(),
	})
	response.NoContent(c)
}

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(c *gin.Context) {
	list, err := h.repo.ListRoles(c.Request.Context())
	if err != nil {
		h.logger.Error("list roles failed", zap.Error(err))
		response.Internal(c, "failed to list roles")
		return
	}
	response.OK(c, list)
}

// CreateRole handles POST /roles.
func (h *Handler) CreateRole(c *gin.Context) {
	var req struct {
		RoleName string `json:"role_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role, err := h.repo.CreateRole(c.Request.Context(), req.RoleName)
	if err != nil {
		if errors.Is(err, ErrRoleExists) {
			response.Conflict(c, "role already exists")
			return
		}
		h.logger.Error("create role failed", zap.Error(err))
		response.Internal(c, "failed to create role")
		return
	}
	response.Created(c, role)
}

// optionalUUIDQuery parses an optional UUID query parameter, writing a 400
// itself on malformed input.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

func parseOptionalUUID(c *gin.Context, s *string, name string) (*uuid.UUID, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}
