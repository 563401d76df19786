package organizations

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/middleware"
	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/response"
)

// CreateRequest is the body for POST /organizations.
type CreateRequest struct {
	Name     string  `json:"name" binding:"required"`
	RegionID *string `json:"region_id"`
}

// UpdateRequest is the body for PUT /organizations/:id.
type UpdateRequest struct {
	Name     *string `json:"name"`
	RegionID *string `json:"region_id"`
}

// Recorder is the fire-and-forget audit sink.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, activityType, message string, metadata map[string]any)
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo     *Repository
	activity Recorder
	logger   *zap.Logger
}

// NewHandler creates an organization handler.
func NewHandler(repo *Repository, activity Recorder, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, activity: activity, logger: logger}
}

// List handles GET /organizations. Optional ?region_id= filter.
func (h *Handler) List(c *gin.Context) {
	var regionID *uuid.UUID
	if s := c.Query("region_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid region_id")
			return
		}
		regionID = &id
	}
	list, err := h.repo.List(c.Request.Context(), regionID)
	if err != nil {
		h.logger.Error("list organizations failed", zap.Error(err))
		response.Internal(c, "failed to list organizations")
		return
	}
	response.OK(c, list)
}

// Get handles GET /organizations/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			response.NotFound(c, "organization not found")
			return
		}
		h.logger.Error("get organization failed", zap.Error(err))
		response.Internal(c, "failed to load organization")
		return
	}
	response.OK(c, org)
}

// Create handles POST /organizations.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org := &models.Organization{Name: req.Name, IsActive: true}
	if req.RegionID != nil && *req.RegionID != "" {
		regionID, err := uuid.Parse(*req.RegionID)
		if err != nil {
			response.BadRequest(c, "invalid region_id")
			return
		}
		org.RegionID = &regionID
	}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		h.logger.Error("create organization failed", zap.Error(err))
		response.Internal(c, "failed to create organization")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(c.Request.Context(), actorID, "organization_created", "Organization created", map[string]any{
		"organization_id": org.ID.String(),
		"name":            org.Name,
	})
	response.Created(c, org)
}

// Update handles PUT /organizations/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			response.NotFound(c, "organization not found")
			return
		}
		h.logger.Error("get organization failed", zap.Error(err))
		response.Internal(c, "failed to load organization")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.RegionID != nil {
		if *req.RegionID == "" {
			org.RegionID = nil
		} else {
			regionID, err := uuid.Parse(*req.RegionID)
			if err != nil {
				response.BadRequest(c, "invalid region_id")
				return
			}
			org.RegionID = &regionID
		}
	}
	if err := h.repo.Update(c.Request.Context(), org); err != nil {
		h.logger.Error("update organization failed", zap.Error(err))
		response.Internal(c, "failed to update organization")
		return
	}
	updated, _ := h.repo.Get(c.Request.Context(), id)
	response.OK(c, updated)
}

// SetActive handles PATCH /organizations/:id/active.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
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
		if errors.Is(err, ErrOrganizationNotFound) {
			response.NotFound(c, "organization not found")
			return
		}
		h.logger.Error("toggle organization failed", zap.Error(err))
		response.Internal(c, "failed to update organization")
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": *req.IsActive})
}

// Delete handles DELETE /organizations/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			response.NotFound(c, "organization not found")
			return
		}
		h.logger.Error("delete organization failed", zap.Error(err))
		response.Internal(c, "failed to delete organization")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(c.Request.Context(), actorID, "organization_deleted", "Organization deleted", map[string]any{
		"organization_id": id.String(),
	})
	response.NoContent(c)
}
