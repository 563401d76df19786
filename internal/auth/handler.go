package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/response"
	"github.com/gramkatha/backend/pkg/utils"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT and the resolved permission
// set, so clients can shape their UI without another round trip.
type TokenResponse struct {
	Token       string       `json:"token"`
	User        *models.User `json:"user"`
	Permissions []string     `json:"permissions"`
}

// PermissionLister resolves the permission slugs a user holds.
type PermissionLister interface {
	UserPermissions(ctx context.Context, user *models.User) ([]string, error)
}

// Registrar creates user accounts. Registration produces a user with no
// role; an administrator assigns one afterwards.
type Registrar interface {
	Create(ctx context.Context, user *models.User) error
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo      *Repository
	jwt       *JWTService
	perms     PermissionLister
	registrar Registrar
	logger    *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, perms PermissionLister, registrar Registrar, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, perms: perms, registrar: registrar, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		response.Internal(c, "login failed")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !user.IsActive {
		response.Unauthorized(c, "account is not active")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		response.Internal(c, "login failed")
		return
	}

	perms, err := h.perms.UserPermissions(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("permission lookup failed", zap.Error(err))
		response.Internal(c, "login failed")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user, Permissions: perms})
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register handles POST /auth/register. The account starts without a role
// and gains access only once an administrator assigns one.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "registration failed")
		return
	}
	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: hash, IsActive: true}
	if err := h.registrar.Create(c.Request.Context(), user); err != nil {
		h.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		response.Conflict(c, "email already registered")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		response.Internal(c, "registration failed")
		return
	}
	response.Created(c, TokenResponse{Token: token, User: user, Permissions: []string{}})
}
