// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](c *gin.Context, status int, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   status < http.StatusBadRequest,
		Message:   message,
	}
}

// Success writes data with status (200 when zero) and returns the envelope.
func Success[T any](c *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	res := envelope[T](c, status, message)
	res.Data, res.Meta = data, meta
	c.JSON(status, res)
	return res
}

// Error writes a failure with status (400 when zero). Middleware must
// Abort after calling it.
func Error[T any](c *gin.Context, status int, message string, details any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	res := envelope[T](c, status, message)
	res.Error = details
	c.JSON(status, res)
	return res
}

// NoContent answers 204 for successful deletes.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
