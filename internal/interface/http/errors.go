package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/internal/application"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
	"github.com/oksasatya/go-social-user-service/pkg/response"
)

const msgInternal = "internal server error"

func statusOf(kind application.Kind) int {
	switch kind {
	case application.KindValidation, application.KindConflict:
		return http.StatusBadRequest
	case application.KindAuth, application.KindAuthz:
		return http.StatusUnauthorized
	case application.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Application errors keep their message,
// everything else is logged with the request id and hidden behind a 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *application.Error
	if errors.As(err, &appErr) {
		response.Error(c, statusOf(appErr.Kind), appErr.Message, nil)
		return
	}
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
	})
	response.Error(c, http.StatusInternalServerError, msgInternal, nil)
}
