package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/pkg/response"
)

// Authorizer is the slice of the RBAC service the guards need.
type Authorizer interface {
	UserHasAnyRole(ctx context.Context, userID string, roleCodes []string) (bool, error)
	UserHasPermission(ctx context.Context, userID, permissionCode string) (bool, error)
}

// RequireRoles passes when the caller holds at least one of the given role
// codes. Must run after Auth.
func RequireRoles(authz Authorizer, codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		ok, err := authz.UserHasAnyRole(c.Request.Context(), uid, codes)
		if err != nil {
			response.AbortError(c, http.StatusInternalServerError, "authorization check failed", nil)
			return
		}
		if !ok {
			response.AbortError(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}

// RequirePermissions passes only when the caller holds every given
// permission code. Must run after Auth.
func RequirePermissions(authz Authorizer, codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		for _, code := range codes {
			ok, err := authz.UserHasPermission(c.Request.Context(), uid, code)
			if err != nil {
				response.AbortError(c, http.StatusInternalServerError, "authorization check failed", nil)
				return
			}
			if !ok {
				response.AbortError(c, http.StatusForbidden, "insufficient permission", nil)
				return
			}
		}
		c.Next()
	}
}
