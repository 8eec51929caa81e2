package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/container"
	handlers "github.com/authgate/authgate/internal/interface/http"
	"github.com/authgate/authgate/internal/interface/middleware"
	"github.com/authgate/authgate/pkg/helpers"
)

// RBACModule exposes role and permission administration. Catalog CRUD
// requires the MANAGE_ROLES permission; user-role assignment requires
// MANAGE_USERS.
type RBACModule struct {
	Handler *handlers.RBACHandler
	JWT     *helpers.JWTManager
	Authz   middleware.Authorizer
}

func NewRBACModule(h *handlers.RBACHandler, jwt *helpers.JWTManager, authz middleware.Authorizer) *RBACModule {
	return &RBACModule{Handler: h, JWT: jwt, Authz: authz}
}

func (m *RBACModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))

	catalog := auth.Group("/")
	catalog.Use(middleware.RequirePermissions(m.Authz, "MANAGE_ROLES"))
	{
		catalog.POST("/rbac/roles", m.Handler.CreateRole)
		catalog.GET("/rbac/roles", m.Handler.ListRoles)
		catalog.GET("/rbac/roles/:id", m.Handler.GetRole)
		catalog.PUT("/rbac/roles/:id", m.Handler.UpdateRole)
		catalog.DELETE("/rbac/roles/:id", m.Handler.DeleteRole)

		catalog.POST("/rbac/permissions", m.Handler.CreatePermission)
		catalog.GET("/rbac/permissions", m.Handler.ListPermissions)
		catalog.GET("/rbac/permissions/:id", m.Handler.GetPermission)
		catalog.PUT("/rbac/permissions/:id", m.Handler.UpdatePermission)
		catalog.DELETE("/rbac/permissions/:id", m.Handler.DeletePermission)

		catalog.POST("/rbac/roles/:id/permissions", m.Handler.AssignPermissionToRole)
		catalog.DELETE("/rbac/roles/:id/permissions/:permissionId", m.Handler.RemovePermissionFromRole)
	}

	users := auth.Group("/")
	users.Use(middleware.RequirePermissions(m.Authz, "MANAGE_USERS"))
	{
		users.POST("/rbac/users/:id/roles", m.Handler.AssignRoleToUser)
		users.DELETE("/rbac/users/:id/roles/:roleId", m.Handler.RemoveRoleFromUser)
		users.GET("/rbac/users/:id/roles", m.Handler.GetUserRoles)
	}
}
