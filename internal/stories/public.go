package stories

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/pkg/response"
)

// PublicHandler serves the unauthenticated read surface. Only published
// stories are ever visible here.
type PublicHandler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewPublicHandler creates the public story handler.
func NewPublicHandler(repo *Repository, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{repo: repo, logger: logger}
}

// List handles GET /stories/published. Optional ?category_id= filter.
func (h *PublicHandler) List(c *gin.Context) {
	var categoryID *uuid.UUID
	if s := c.Query("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid category_id")
			return
		}
		categoryID = &id
	}
	list, err := h.repo.ListPublished(c.Request.Context(), categoryID)
	if err != nil {
		h.logger.Error("list published failed", zap.Error(err))
		response.Internal(c, "failed to list stories")
		return
	}
	response.OK(c, listPayload(list))
}

// Get handles GET /stories/:id.
func (h *PublicHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid story id")
		return
	}
	detail, err := h.repo.GetPublishedByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrStoryNotFound) {
			response.NotFound(c, "story not found")
			return
		}
		h.logger.Error("get published failed", zap.Error(err))
		response.Internal(c, "failed to load story")
		return
	}
	response.OK(c, detail)
}

// GetBySlug handles GET /stories/slug/:slug.
func (h *PublicHandler) GetBySlug(c *gin.Context) {
	s := c.Param("slug")
	if s == "" {
		response.BadRequest(c, "missing slug")
		return
	}
	detail, err := h.repo.GetPublishedBySlug(c.Request.Context(), s)
	if err != nil {
		if errors.Is(err, ErrStoryNotFound) {
			response.NotFound(c, "story not found")
			return
		}
		h.logger.Error("get published by slug failed", zap.Error(err))
		response.Internal(c, "failed to load story")
		return
	}
	response.OK(c, detail)
}
