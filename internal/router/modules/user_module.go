package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/container"
	handlers "github.com/authgate/authgate/internal/interface/http"
	"github.com/authgate/authgate/internal/interface/middleware"
	"github.com/authgate/authgate/pkg/helpers"
)

// UserModule wires user HTTP handlers and JWT middleware into routes.
// Self-service: GET/PUT /api/users/me, POST /api/users/me/change-password,
// POST /api/users/me/avatar. Admin routes live under /api/users and
// require the ADMIN role.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Authz   middleware.Authorizer
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, authz middleware.Authorizer) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Authz: authz}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	// Softer per-IP limiter plus a per-user limiter on all protected routes
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/users/me", m.Handler.Me)
		auth.PUT("/users/me", m.Handler.UpdateMe)
		auth.POST("/users/me/change-password", m.Handler.ChangePassword)
		auth.POST("/users/me/avatar", m.Handler.UploadAvatar)
	}

	admin := auth.Group("/")
	admin.Use(middleware.RequireRoles(m.Authz, "ADMIN"))
	{
		admin.GET("/users", m.Handler.List)
		admin.GET("/users/search", m.Handler.Search)
		admin.GET("/users/:id", m.Handler.Get)
		admin.PUT("/users/:id/status", m.Handler.UpdateStatus)
		admin.DELETE("/users/:id", m.Handler.Delete)
	}
}
