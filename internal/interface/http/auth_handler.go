package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/internal/application"
	"github.com/authgate/authgate/internal/interface/middleware"
	"github.com/authgate/authgate/pkg/response"
	"github.com/authgate/authgate/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, res, "registered")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful")
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, pair, "token refreshed")
}

// Logout POST /api/auth/logout
// Always 204: ending a session never surfaces a token-verification error.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		h.Svc.Logout(c.Request.Context(), req.RefreshToken)
	}
	response.NoContent(c)
}

// RevokeAll POST /api/auth/revoke-all (authenticated)
func (h *AuthHandler) RevokeAll(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	email := c.GetString(middleware.CtxUserEmailKey)
	if err := h.Svc.RevokeAllTokens(c.Request.Context(), uid, email); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}
