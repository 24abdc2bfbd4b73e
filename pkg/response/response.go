package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessBody is the envelope of every successful response.
type SuccessBody[T any] struct {
	Status    string `json:"status"`
	Data      T      `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorBody is the envelope of every failed response.
type ErrorBody struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, SuccessBody[T]{
		Status:    StatusSuccess,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
	})
}

func Error(ctx *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, ErrorBody{
		Status:    StatusError,
		Message:   message,
		Details:   details,
		RequestID: ctx.GetString("request_id"),
	})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string) {
	Error(ctx, status, message, nil)
	ctx.Abort()
}
