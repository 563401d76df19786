package categories

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

// CreateRequest is the body for POST /story-categories.
type CreateRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     *string  `json:"description"`
	RegionIDs       []string `json:"region_ids"`
	OrganizationIDs []string `json:"organization_ids"`
}

// UpdateRequest is the body for PUT /story-categories/:id.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// OrgLister lists the categories assigned to an organization.
type OrgLister interface {
	CategoriesForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.StoryCategory, error)
}

// Recorder is the fire-and-forget audit sink.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, activityType, message string, metadata map[string]any)
}

// Handler handles story category HTTP endpoints.
type Handler struct {
	repo     *Repository
	orgs     OrgLister
	activity Recorder
	logger   *zap.Logger
}

// NewHandler creates a category handler.
func NewHandler(repo *Repository, orgs OrgLister, activity Recorder, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, activity: activity, logger: logger}
}

// List handles GET /story-categories. The public surface sees active
// categories only; ?all=1 on the managed surface includes inactive ones.
func (h *Handler) List(c *gin.Context) {
	includeInactive := c.Query("all") == "1"
	list, err := h.repo.List(c.Request.Context(), includeInactive)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

// Get handles GET /story-categories/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	cat, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		h.logger.Error("get category failed", zap.Error(err))
		response.Internal(c, "failed to load category")
		return
	}
	response.OK(c, cat)
}

// Create handles POST /story-categories.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	regionIDs, ok := parseUUIDs(c, req.RegionIDs, "region_ids")
	if !ok {
		return
	}
	orgIDs, ok := parseUUIDs(c, req.OrganizationIDs, "organization_ids")
	if !ok {
		return
	}
	cat := &models.StoryCategory{Name: req.Name, Description: req.Description, IsActive: true}
	if err := h.repo.Create(c.Request.Context(), cat, regionIDs, orgIDs); err != nil {
		if errors.Is(err, ErrNameTaken) {
			response.Conflict(c, "category name already exists")
			return
		}
		h.logger.Error("create category failed", zap.Error(err))
		response.Internal(c, "failed to create category")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(c.Request.Context(), actorID, "category_created", "Story category created", map[string]any{
		"category_id": cat.ID.String(),
		"name":        cat.Name,
	})
	response.Created(c, cat)
}

// Update handles PUT /story-categories/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	cat, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		h.logger.Error("get category failed", zap.Error(err))
		response.Internal(c, "failed to load category")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = req.Description
	}
	if err := h.repo.Update(c.Request.Context(), cat); err != nil {
		if errors.Is(err, ErrNameTaken) {
			response.Conflict(c, "category name already exists")
			return
		}
		h.logger.Error("update category failed", zap.Error(err))
		response.Internal(c, "failed to update category")
		return
	}
	response.OK(c, cat)
}

// SetActive handles PATCH /story-categories/:id/active.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
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
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		h.logger.Error("toggle category failed", zap.Error(err))
		response.Internal(c, "failed to update category")
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": *req.IsActive})
}

// Delete handles DELETE /story-categories/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			response.NotFound(c, "category not found")
		case errors.Is(err, ErrCategoryInUse):
			response.Conflict(c, "category still has stories")
		default:
			h.logger.Error("delete category failed", zap.Error(err))
			response.Internal(c, "failed to delete category")
		}
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.activity.Record(c.Request.Context(), actorID, "category_deleted", "Story category deleted", map[string]any{
		"category_id": id.String(),
	})
	response.NoContent(c)
}

// SetOrganizations handles PUT /story-categories/:id/organizations.
func (h *Handler) SetOrganizations(c *gin.Context) {
	h.setAssignments(c, "organization_ids", h.repo.SetOrganizations)
}

// SetRegions handles PUT /story-categories/:id/regions.
func (h *Handler) SetRegions(c *gin.Context) {
	h.setAssignments(c, "region_ids", h.repo.SetRegions)
}

func (h *Handler) setAssignments(c *gin.Context, field string, apply func(context.Context, uuid.UUID, []uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	var body map[string][]string
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ids, ok := parseUUIDs(c, body[field], field)
	if !ok {
		return
	}
	if err := apply(c.Request.Context(), id, ids); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.NotFound(c, "category not found")
			return
		}
		h.logger.Error("set category assignments failed", zap.Error(err))
		response.Internal(c, "failed to update category")
		return
	}
	cat, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("reload category failed", zap.Error(err))
		response.Internal(c, "failed to load category")
		return
	}
	response.OK(c, cat)
}

// ListForOrganization handles GET /story-categories/organization/:orgId.
func (h *Handler) ListForOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.orgs.CategoriesForOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list categories for organization failed", zap.Error(err))
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

func parseUUIDs(c *gin.Context, raw []string, field string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid "+field)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
