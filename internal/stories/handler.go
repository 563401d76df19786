package stories

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/access"
	"github.com/gramkatha/backend/internal/middleware"
	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/response"
	"github.com/gramkatha/backend/pkg/storage"
)

// SubmitRequest is the body for POST /stories.
type SubmitRequest struct {
	CategoryID              string  `json:"category_id" binding:"required,uuid"`
	Title                   string  `json:"title" binding:"required"`
	Content                 string  `json:"content" binding:"required"`
	Subtitle                *string `json:"subtitle"`
	PhotoURL                *string `json:"photo_url"`
	Quote                   *string `json:"quote"`
	PersonName              *string `json:"person_name"`
	PersonLocation          *string `json:"person_location"`
	FacilitatorName         *string `json:"facilitator_name"`
	FacilitatorOrganization *string `json:"facilitator_organization"`
	Description             *string `json:"description"`

	StateID         string   `json:"state_id" binding:"required"`
	StateName       *string  `json:"state_name"`
	DistrictID      *string  `json:"district_id"`
	DistrictName    *string  `json:"district_name"`
	SubDistrictID   *string  `json:"sub_district_id"`
	SubDistrictName *string  `json:"sub_district_name"`
	BlockID         *string  `json:"block_id"`
	BlockName       *string  `json:"block_name"`
	PanchayatID     *string  `json:"panchayat_id"`
	PanchayatName   *string  `json:"panchayat_name"`
	VillageID       *string  `json:"village_id"`
	VillageName     *string  `json:"village_name"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// EditRequest is the body for PUT /stories/:id. Nil fields keep the stored
// value; status and slug are not editable.
type EditRequest struct {
	CategoryID              *string `json:"category_id"`
	Title                   *string `json:"title"`
	Content                 *string `json:"content"`
	Subtitle                *string `json:"subtitle"`
	PhotoURL                *string `json:"photo_url"`
	Quote                   *string `json:"quote"`
	PersonName              *string `json:"person_name"`
	PersonLocation          *string `json:"person_location"`
	FacilitatorName         *string `json:"facilitator_name"`
	FacilitatorOrganization *string `json:"facilitator_organization"`
	Description             *string `json:"description"`

	Location *models.StoryLocation `json:"location"`
}

// RejectRequest is the body for POST /stories/:id/reject.
type RejectRequest struct {
	Reason *string `json:"reason"`
}

// Handler handles story HTTP endpoints.
type Handler struct {
	svc    *Service
	repo   *Repository
	photos *storage.S3
	logger *zap.Logger
}

// NewHandler creates a story handler. photos may be nil when S3 is not
// configured; the upload-url endpoint then reports unavailable.
func NewHandler(svc *Service, repo *Repository, photos *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, photos: photos, logger: logger}
}

// writeErr translates service errors to the response envelope. Unknown
// errors are logged and redacted.
func (h *Handler) writeErr(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrStoryNotFound):
		response.NotFound(c, "story not found")
	case errors.Is(err, access.ErrCategoryNotFound):
		response.NotFound(c, "category not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, ErrInvalidState):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrActorNotFound), errors.Is(err, ErrAuthorNotFound):
		response.Unauthorized(c, "account no longer exists")
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		response.Internal(c, "failed to "+op)
	}
}

// Submit handles POST /stories.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		response.BadRequest(c, "invalid category_id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	story, err := h.svc.Submit(c.Request.Context(), actorID, SubmitInput{
		CategoryID:              categoryID,
		Title:                   req.Title,
		Subtitle:                req.Subtitle,
		PhotoURL:                req.PhotoURL,
		Quote:                   req.Quote,
		PersonName:              req.PersonName,
		PersonLocation:          req.PersonLocation,
		FacilitatorName:         req.FacilitatorName,
		FacilitatorOrganization: req.FacilitatorOrganization,
		Description:             req.Description,
		Content:                 req.Content,
		Location: models.StoryLocation{
			StateID:         req.StateID,
			StateName:       req.StateName,
			DistrictID:      req.DistrictID,
			DistrictName:    req.DistrictName,
			SubDistrictID:   req.SubDistrictID,
			SubDistrictName: req.SubDistrictName,
			BlockID:         req.BlockID,
			BlockName:       req.BlockName,
			PanchayatID:     req.PanchayatID,
			PanchayatName:   req.PanchayatName,
			VillageID:       req.VillageID,
			VillageName:     req.VillageName,
			Latitude:        req.Latitude,
			Longitude:       req.Longitude,
		},
	})
	if err != nil {
		h.writeErr(c, "submit story", err)
		return
	}
	response.Created(c, story)
}

// Approve handles POST /stories/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid story id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	story, err := h.svc.Approve(c.Request.Context(), actorID, id)
	if err != nil {
		h.writeErr(c, "approve story", err)
		return
	}
	response.OK(c, story)
}

// Reject handles POST /stories/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid story id")
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.svc.Reject(c.Request.Context(), actorID, id, req.Reason); err != nil {
		h.writeErr(c, "reject story", err)
		return
	}
	response.OK(c, gin.H{"id": id, "status": models.StoryRejected})
}

// Edit handles PUT /stories/:id.
func (h *Handler) Edit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid story id")
		return
	}
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := EditInput{
		Title:                   req.Title,
		Subtitle:                req.Subtitle,
		PhotoURL:                req.PhotoURL,
		Quote:                   req.Quote,
		PersonName:              req.PersonName,
		PersonLocation:          req.PersonLocation,
		FacilitatorName:         req.FacilitatorName,
		FacilitatorOrganization: req.FacilitatorOrganization,
		Description:             req.Description,
		Content:                 req.Content,
		Location:                req.Location,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			response.BadRequest(c, "invalid category_id")
			return
		}
		in.CategoryID = &categoryID
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	story, err := h.svc.Edit(c.Request.Context(), actorID, id, in)
	if err != nil {
		h.writeErr(c, "update story", err)
		return
	}
	response.OK(c, story)
}

// Delete handles DELETE /stories/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid story id")
		return
	}
	actorID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.svc.Delete(c.Request.Context(), actorID, id); err != nil {
		h.writeErr(c, "delete story", err)
		return
	}
	response.NoContent(c)
}

// listPayload is the response body shared by every story listing.
func listPayload(list []models.StoryDetail) gin.H {
	return gin.H{"stories": list, "count": len(list)}
}

// ListPending handles GET /stories/pending. Editors see only their own
// organization's Writer submissions.
func (h *Handler) ListPending(c *gin.Context) {
	scope := ScopeFor(middleware.CurrentUser(c))
	list, err := h.repo.ListPending(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("list pending failed", zap.Error(err))
		response.Internal(c, "failed to list pending stories")
		return
	}
	response.OK(c, listPayload(list))
}

// CountPending handles GET /stories/pending/count.
func (h *Handler) CountPending(c *gin.Context) {
	scope := ScopeFor(middleware.CurrentUser(c))
	n, err := h.repo.CountPending(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("count pending failed", zap.Error(err))
		response.Internal(c, "failed to count pending stories")
		return
	}
	response.OK(c, gin.H{"count": n})
}

// ListApproved handles GET /stories/approved/all under the viewer's scope.
func (h *Handler) ListApproved(c *gin.Context) {
	scope := ScopeFor(middleware.CurrentUser(c))
	list, err := h.repo.ListApproved(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("list approved failed", zap.Error(err))
		response.Internal(c, "failed to list approved stories")
		return
	}
	response.OK(c, listPayload(list))
}

// ListApprovedBy handles GET /stories/approved/:adminId under the viewer's
// scope.
func (h *Handler) ListApprovedBy(c *gin.Context) {
	reviewerID, err := uuid.Parse(c.Param("adminId"))
	if err != nil {
		response.BadRequest(c, "invalid reviewer id")
		return
	}
	scope := ScopeFor(middleware.CurrentUser(c))
	list, err := h.repo.ListApprovedBy(c.Request.Context(), reviewerID, scope)
	if err != nil {
		h.logger.Error("list approved-by failed", zap.Error(err))
		response.Internal(c, "failed to list approved stories")
		return
	}
	response.OK(c, listPayload(list))
}

// ListByWriter handles GET /stories/writer/:userId. Writers may only list
// their own stories; reviewers may list any writer's.
func (h *Handler) ListByWriter(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	viewer := middleware.CurrentUser(c)
	if viewer != nil && viewer.Kind() == models.RoleWriter && viewer.ID != authorID {
		response.Forbidden(c, "writers may only list their own stories")
		return
	}
	list, err := h.repo.ListByAuthor(c.Request.Context(), authorID)
	if err != nil {
		h.logger.Error("list by writer failed", zap.Error(err))
		response.Internal(c, "failed to list stories")
		return
	}
	response.OK(c, listPayload(list))
}

// PhotoUploadURL handles POST /stories/photo-upload-url. Returns a presigned
// PUT and the final object URL the client should store in photo_url.
func (h *Handler) PhotoUploadURL(c *gin.Context) {
	if h.photos == nil {
		response.Internal(c, "photo storage is not configured")
		return
	}
	var req struct {
		ContentType string `json:"content_type" binding:"required"`
		Size        int64  `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, ok := storage.AllowedPhotoTypes[req.ContentType]; !ok {
		response.BadRequest(c, "unsupported photo content type")
		return
	}
	if req.Size > storage.MaxPhotoSize {
		response.BadRequest(c, "photo exceeds maximum size")
		return
	}
	key := storage.PhotoKey(req.ContentType)
	uploadURL, err := h.photos.PresignUpload(c.Request.Context(), key, req.ContentType)
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err))
		response.Internal(c, "failed to create upload url")
		return
	}
	response.OK(c, gin.H{
		"upload_url": uploadURL,
		"photo_url":  h.photos.ObjectURL(key),
		"key":        key,
	})
}
