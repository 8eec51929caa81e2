package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/internal/application"
	"github.com/authgate/authgate/pkg/response"
	"github.com/authgate/authgate/pkg/validation"
)

type RBACHandler struct {
	Svc    *application.RBACService
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewRBACHandler(svc *application.RBACService, logger *logrus.Logger, cfg *config.Config) *RBACHandler {
	return &RBACHandler{Svc: svc, Logger: logger, Cfg: cfg}
}

type roleRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required,uppercase"`
}

type roleUpdateRequest struct {
	Name string `json:"name"`
	Code string `json:"code" binding:"omitempty,uppercase"`
}

type permissionRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required,uppercase"`
}

type permissionUpdateRequest struct {
	Name string `json:"name"`
	Code string `json:"code" binding:"omitempty,uppercase"`
}

type assignPermissionRequest struct {
	PermissionID string `json:"permission_id" binding:"required,uuid"`
}

type assignRoleRequest struct {
	RoleID string `json:"role_id" binding:"required,uuid"`
}

// Roles

func (h *RBACHandler) CreateRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	role, err := h.Svc.CreateRole(c.Request.Context(), application.RoleInput{Name: req.Name, Code: req.Code})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, role, "role created")
}

func (h *RBACHandler) ListRoles(c *gin.Context) {
	roles, err := h.Svc.ListRoles(c.Request.Context())
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, roles, "roles")
}

func (h *RBACHandler) GetRole(c *gin.Context) {
	role, err := h.Svc.GetRoleByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, role, "role")
}

func (h *RBACHandler) UpdateRole(c *gin.Context) {
	var req roleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	role, err := h.Svc.UpdateRole(c.Request.Context(), c.Param("id"), application.RoleInput{Name: req.Name, Code: req.Code})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, role, "role updated")
}

func (h *RBACHandler) DeleteRole(c *gin.Context) {
	if err := h.Svc.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

// Permissions

func (h *RBACHandler) CreatePermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	perm, err := h.Svc.CreatePermission(c.Request.Context(), application.PermissionInput{Name: req.Name, Code: req.Code})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, perm, "permission created")
}

func (h *RBACHandler) ListPermissions(c *gin.Context) {
	perms, err := h.Svc.ListPermissions(c.Request.Context())
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, perms, "permissions")
}

func (h *RBACHandler) GetPermission(c *gin.Context) {
	perm, err := h.Svc.GetPermissionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, perm, "permission")
}

func (h *RBACHandler) UpdatePermission(c *gin.Context) {
	var req permissionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	perm, err := h.Svc.UpdatePermission(c.Request.Context(), c.Param("id"), application.PermissionInput{Name: req.Name, Code: req.Code})
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, perm, "permission updated")
}

func (h *RBACHandler) DeletePermission(c *gin.Context) {
	if err := h.Svc.DeletePermission(c.Request.Context(), c.Param("id")); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

// Assignments

func (h *RBACHandler) AssignPermissionToRole(c *gin.Context) {
	var req assignPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.AssignPermissionToRole(c.Request.Context(), c.Param("id"), req.PermissionID); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

func (h *RBACHandler) RemovePermissionFromRole(c *gin.Context) {
	if err := h.Svc.RemovePermissionFromRole(c.Request.Context(), c.Param("id"), c.Param("permissionId")); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

func (h *RBACHandler) AssignRoleToUser(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.AssignRoleToUser(c.Request.Context(), c.Param("id"), req.RoleID); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

func (h *RBACHandler) RemoveRoleFromUser(c *gin.Context) {
	if err := h.Svc.RemoveRoleFromUser(c.Request.Context(), c.Param("id"), c.Param("roleId")); err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.NoContent(c)
}

func (h *RBACHandler) GetUserRoles(c *gin.Context) {
	roles, err := h.Svc.GetUserRoles(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err, h.Cfg.Env, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, roles, "user roles")
}
