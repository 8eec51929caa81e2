package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.GET("/protected", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserIDKey),
			"email":   c.GetString(CtxUserEmailKey),
		})
	})
	return r
}

func TestAuthValidToken(t *testing.T) {
	t.Parallel()
	jwt := helpers.NewJWTManager("access", "refresh", 15*time.Minute, time.Hour)
	r := newAuthRouter(jwt)

	tok, _, err := jwt.GenerateAccessToken("user-1", "a@b.c")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "user-1")
	require.Contains(t, w.Body.String(), "a@b.c")
}

func TestAuthMissingHeader(t *testing.T) {
	t.Parallel()
	jwt := helpers.NewJWTManager("access", "refresh", 15*time.Minute, time.Hour)
	r := newAuthRouter(jwt)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), `"success":false`)
}

func TestAuthMalformedHeader(t *testing.T) {
	t.Parallel()
	jwt := helpers.NewJWTManager("access", "refresh", 15*time.Minute, time.Hour)
	r := newAuthRouter(jwt)

	for _, h := range []string{"Bearer", "Basic abc", "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", h)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", h)
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	t.Parallel()
	jwt := helpers.NewJWTManager("access", "refresh", 15*time.Minute, time.Hour)
	r := newAuthRouter(jwt)

	refresh, _, err := jwt.GenerateRefreshToken("user-1", "a@b.c", "jti-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	t.Parallel()
	jwt := helpers.NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	r := newAuthRouter(jwt)

	tok, _, err := jwt.GenerateAccessToken("user-1", "a@b.c")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
