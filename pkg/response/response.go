package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint returns, success or failure.
// Timestamp is epoch milliseconds.
type APIResponse[T any] struct {
	Success   bool        `json:"success"`
	Data      T           `json:"data,omitempty"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success writes a success envelope with the given status code.
func Success[T any](c *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, APIResponse[T]{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		RequestID: c.GetString("request_id"),
	})
}

// NoContent writes an empty 204 response; no envelope since there is no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes a failure envelope with the given status code.
func Error(c *gin.Context, status int, message string, err interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIResponse[any]{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Error:     err,
		RequestID: c.GetString("request_id"),
	})
}

// AbortError writes a failure envelope and aborts the handler chain.
func AbortError(c *gin.Context, status int, message string, err interface{}) {
	c.AbortWithStatusJSON(status, APIResponse[any]{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Error:     err,
		RequestID: c.GetString("request_id"),
	})
}
