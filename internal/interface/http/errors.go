package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/internal/interface/middleware"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/response"
	"github.com/oksasatya/foodgram-api/pkg/validation"
)

// writeError maps application errors to HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	var aerr *app.Error
	if errors.As(err, &aerr) {
		response.Error[any](c, statusOf(aerr.Kind), aerr.Message, nil)
		return
	}
	if errors.Is(err, app.ErrInvalidCredentials) {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if logger != nil {
		helpers.RequestEntry(logger, c).WithError(err).Error("request failed")
	}
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

func statusOf(kind error) int {
	switch kind {
	case app.ErrInvalid, app.ErrConflict:
		return http.StatusBadRequest
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrForbidden:
		return http.StatusForbidden
	case app.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case app.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

// pathID parses a positive integer path parameter; a bad value is a 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusNotFound, "not found", nil)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(middleware.CtxUserIDKey)
}
