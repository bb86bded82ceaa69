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

// AdminHandler handles the administrative maintenance endpoints: lock reset,
// data wipe, and snapshot import.
type AdminHandler struct {
	attendanceService *service.AttendanceService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(attendanceService *service.AttendanceService) *AdminHandler {
	return &AdminHandler{attendanceService: attendanceService}
}

// ResetLocks godoc
// POST /api/v1/admin/reset-locks
// Clears every teacher daily lock, the out-of-band unlock.
func (h *AdminHandler) ResetLocks(c *gin.Context) {
	err := h.attendanceService.ResetLocks(c.Request.Context(), middleware.GetClaims(c).Role)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locks_reset": true})
}

// ClearData godoc
// POST /api/v1/admin/clear-data
// Drops every attendance record and lock. The roster survives.
func (h *AdminHandler) ClearData(c *gin.Context) {
	err := h.attendanceService.ClearAllData(c.Request.Context(), middleware.GetClaims(c).Role)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// Import godoc
// POST /api/v1/admin/import
// Replaces roster, records, and locks wholesale from an uploaded snapshot
// document.
func (h *AdminHandler) Import(c *gin.Context) {
	var snap model.Snapshot
	if fields := validator.Bind(c, &snap); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.attendanceService.ImportSnapshot(c.Request.Context(), middleware.GetClaims(c).Role, &snap)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"imported": true,
		"students": len(snap.Students),
		"dates":    len(snap.Records),
	})
}
