package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/internal/application"
	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
	"github.com/authgate/authgate/internal/interface/middleware"
	"github.com/authgate/authgate/pkg/response"
	"github.com/authgate/authgate/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cfg *config.Config) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cfg: cfg}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" binding:"omitempty,phone"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type updateStatusRequest struct {
	Status entity.UserStatus `json:"status" binding:"required,oneof=ACTIVE BANNED PENDING"`
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetByIDWithRoles(c.Request.Context(), uid)
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, u.Project(), "profile")
}

// UpdateMe PUT /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateUser(c.Request.Context(), uid, application.UpdateUserInput{Name: req.Name, Phone: req.Phone})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, u.Project(), "profile updated")
}

// ChangePassword POST /api/users/me/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

// UploadAvatar POST /api/users/me/avatar (multipart form, field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "cannot read avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar": url}, "avatar uploaded")
}

// Admin endpoints

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := entity.UserStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		response.Error(c, http.StatusBadRequest, "invalid status filter", nil)
		return
	}
	users, meta, err := h.Svc.List(c.Request.Context(), repository.ListUsersParams{
		Page:   page,
		Limit:  limit,
		Status: status,
		Search: c.Query("search"),
	})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users, "pagination": meta}, "users")
}

// Get GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetByIDWithRoles(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, u.Project(), "user")
}

// UpdateStatus PUT /api/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, u.Project(), "status updated")
}

// Delete DELETE /api/users/:id (soft delete)
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

// Search GET /api/users/search (Elasticsearch)
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}
