package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/rollcall-backend/internal/response"
	"github.com/classtrack/rollcall-backend/internal/service"
)

// failFromService maps service sentinel errors onto the response envelope.
// Anything unmapped is a 500 so handlers never leak internals.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrNoSession), errors.Is(err, service.ErrSessionInvalidated):
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrDailyLock):
		response.Fail(c, http.StatusLocked, response.ErrDailyLockActive)
	case errors.Is(err, service.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrDuplicateStudent):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrValidation):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"detail": err.Error()})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
