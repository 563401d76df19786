package activity

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/middleware"
	"github.com/gramkatha/backend/pkg/response"
)

// StoreRequest is the body for POST /activities, used by clients to log
// UI-side events into the same trail.
type StoreRequest struct {
	Type     string         `json:"type" binding:"required"`
	Message  string         `json:"message" binding:"required"`
	Metadata map[string]any `json:"metadata"`
}

// Handler handles activity HTTP endpoints.
type Handler struct {
	repo     *Repository
	recorder *Recorder
	logger   *zap.Logger
}

// NewHandler creates an activity handler.
func NewHandler(repo *Repository, recorder *Recorder, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, recorder: recorder, logger: logger}
}

// List handles GET /activities. Only the caller's own trail is visible.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.repo.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("list activities failed", zap.Error(err))
		response.Internal(c, "failed to list activities")
		return
	}
	response.OK(c, list)
}

// Store handles POST /activities. Goes through the queue like server-side
// events so ordering and retry behavior match.
func (h *Handler) Store(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	h.recorder.Record(c.Request.Context(), userID, req.Type, req.Message, req.Metadata)
	response.Created(c, gin.H{"queued": true})
}
