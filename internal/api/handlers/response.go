package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-matrix-tasks/internal/api/middleware"
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/service"
)

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, model.ResponseApi{ApiMessage: message, Data: data})
}

// fail maps service errors onto status codes.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respond(c, status, err.Error(), nil)
}

func statusOf(err error) int {
	var syncErr *service.SyncError
	switch {
	case errors.As(err, &syncErr):
		switch syncErr.Kind {
		case service.KindConfig:
			return http.StatusPreconditionFailed
		case service.KindTransport, service.KindDecode:
			return http.StatusBadGateway
		case service.KindEmpty:
			return http.StatusUnprocessableEntity
		case service.KindInFlight:
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountInactive), errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateUsername), errors.Is(err, model.ErrActionNotAllowed),
		errors.Is(err, service.ErrSyncInFlight):
		return http.StatusConflict
	case errors.Is(err, service.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, model.ErrInvalidPeriod):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	respond(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
}

// actor is set by middleware.Auth on every protected route.
func actor(c *gin.Context) model.User {
	u, _ := middleware.CurrentUser(c)
	return u
}
