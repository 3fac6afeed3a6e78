package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/todo-api/internal/application"
	"github.com/oksasatya/todo-api/pkg/response"
	"github.com/oksasatya/todo-api/pkg/validation"
)

const (
	codeValidation   = "VALIDATION_ERROR"
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeNotFound     = "NOT_FOUND"
	codeRequest      = "REQUEST_FAILED"
	codeInternal     = "INTERNAL_ERROR"
)

// statusFor maps application errors onto HTTP statuses.
func statusFor(err error) (int, response.ErrorBody, string) {
	var reqErr *app.RequestError
	switch {
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest, response.ErrorBody{Code: codeValidation, Detail: err.Error()}, "invalid request"
	case errors.Is(err, app.ErrUnauthorized):
		return http.StatusUnauthorized, response.ErrorBody{Code: codeUnauthorized}, "invalid credentials"
	case errors.Is(err, app.ErrTaskForbidden):
		return http.StatusForbidden, response.ErrorBody{Code: codeForbidden}, "forbidden"
	case errors.Is(err, app.ErrTaskNotFound):
		return http.StatusNotFound, response.ErrorBody{Code: codeNotFound}, "task not found"
	case errors.Is(err, app.ErrUserNotFound):
		return http.StatusNotFound, response.ErrorBody{Code: codeNotFound}, "user not found"
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, response.ErrorBody{Code: codeRequest, Detail: reqErr.Detail}, "request failed"
	default:
		return http.StatusInternalServerError, response.ErrorBody{Code: codeInternal}, "internal error"
	}
}

func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status, body, msg := statusFor(err)
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	response.Error[any](c, status, msg, body)
}

// respondBindError reports a body/query that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Code:    codeValidation,
		Details: validation.ToDetails(err),
	})
}
