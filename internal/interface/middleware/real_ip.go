package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey is the gin context key holding the resolved client IP.
// Rate-limit key functions read it so limits follow the real client
// rather than the front proxy.
const CtxRealIPKey = "real_ip"

// RealIP resolves the client IP once per request and stores it under
// CtxRealIPKey. CF-Connecting-IP wins over X-Forwarded-For (left-most
// hop), with c.ClientIP() as the fallback when neither parses.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, resolveClientIP(c))
		c.Next()
	}
}

func resolveClientIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
