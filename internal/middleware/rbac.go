package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/rollcall-backend/internal/metrics"
	"github.com/classtrack/rollcall-backend/internal/policy"
	"github.com/classtrack/rollcall-backend/internal/response"
)

// RequireAction checks the session role against the permission table for the
// given action. Handlers behind this middleware can assume the role is
// allowed; services still re-check so the rule holds for non-HTTP callers.
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !policy.CanPerform(claims.Role, action) {
			metrics.PolicyDenialsTotal.WithLabelValues(string(claims.Role), string(action)).Inc()
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Next()
	}
}
