package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSuccessEnvelope(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	before := time.Now().UnixMilli()
	Success(c, http.StatusCreated, map[string]string{"id": "u1"}, "created")
	after := time.Now().UnixMilli()

	require.Equal(t, http.StatusCreated, w.Code)

	var env APIResponse[map[string]string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.Equal(t, "created", env.Message)
	require.Equal(t, "u1", env.Data["id"])
	require.Equal(t, "req-1", env.RequestID)
	require.Nil(t, env.Error)
	require.GreaterOrEqual(t, env.Timestamp, before)
	require.LessOrEqual(t, env.Timestamp, after)
}

func TestErrorEnvelope(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusConflict, "email already in use", map[string]string{"email": "taken"})

	require.Equal(t, http.StatusConflict, w.Code)

	var env APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.Equal(t, "email already in use", env.Message)
	require.NotNil(t, env.Error)
	require.Nil(t, env.Data)
}

func TestErrorDefaultsToBadRequest(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 0, "nope", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoContentHasEmptyBody(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NoContent(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())
}
