package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/rollcall-backend/internal/middleware"
	"github.com/classtrack/rollcall-backend/internal/model"
	"github.com/classtrack/rollcall-backend/internal/response"
	"github.com/classtrack/rollcall-backend/internal/service"
	"github.com/classtrack/rollcall-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates a (username, password, role) triple. A successful login
// replaces any previously active session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, session, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{Token: token, Session: *session})
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the active session. Attendance data is untouched.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the active session identity for the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.authService.ActiveSession(c.Request.Context())
	if err != nil || session == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}
