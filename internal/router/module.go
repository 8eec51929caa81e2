package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area (auth, users, rbac, debug). Each
// implementation attaches its routes, and any per-route guards, to the
// shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
