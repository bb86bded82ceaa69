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

// AttendanceHandler handles the per-day attendance sheet: viewing, marking,
// and the daily save.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Day godoc
// GET /api/v1/attendance?date=YYYY-MM-DD
// Returns every rostered student's three-state status for the date, plus
// whether the teacher daily lock is set, so clients can disable controls.
func (h *AttendanceHandler) Day(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	entries, err := h.attendanceService.Day(middleware.GetClaims(c).Role, date)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":    date,
		"entries": entries,
		"locked":  h.attendanceService.HasLockedDate(date),
	})
}

// Mark godoc
// POST /api/v1/attendance/mark
// Sets one student's presence for a date.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req model.MarkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	date, ok := canonicalDate(c, req.Date)
	if !ok {
		return
	}

	err := h.attendanceService.Mark(c.Request.Context(), middleware.GetClaims(c).Role, date, req.StudentID, *req.Present)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":       date,
		"student_id": req.StudentID,
		"present":    *req.Present,
	})
}

// Toggle godoc
// POST /api/v1/attendance/toggle
// Flips one student's presence for a date; an unrecorded student toggles to
// present.
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	var req model.ToggleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	date, ok := canonicalDate(c, req.Date)
	if !ok {
		return
	}

	present, err := h.attendanceService.Toggle(c.Request.Context(), middleware.GetClaims(c).Role, date, req.StudentID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":       date,
		"student_id": req.StudentID,
		"present":    present,
	})
}

// Bulk godoc
// POST /api/v1/attendance/bulk
// Marks a set of students for a date in one batch; an invalid id fails the
// whole batch.
func (h *AttendanceHandler) Bulk(c *gin.Context) {
	var req model.BulkMarkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	date, ok := canonicalDate(c, req.Date)
	if !ok {
		return
	}

	err := h.attendanceService.MarkAll(c.Request.Context(), middleware.GetClaims(c).Role, date, req.StudentIDs, *req.Present)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":    date,
		"marked":  len(req.StudentIDs),
		"present": *req.Present,
	})
}

// ClearDate godoc
// DELETE /api/v1/attendance?date=YYYY-MM-DD
// Removes the whole day from the records, returning every student to the
// unrecorded state.
func (h *AttendanceHandler) ClearDate(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	err := h.attendanceService.ClearDate(c.Request.Context(), middleware.GetClaims(c).Role, date)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"date": date, "cleared": true})
}

// Save godoc
// POST /api/v1/attendance/save
// Commits the working state for a date. A teacher's first save sets the
// once-per-day lock; a second save for the same date fails with 423.
func (h *AttendanceHandler) Save(c *gin.Context) {
	var req model.SaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	date, ok := canonicalDate(c, req.Date)
	if !ok {
		return
	}

	err := h.attendanceService.Save(c.Request.Context(), middleware.GetClaims(c).Role, date)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":   date,
		"locked": h.attendanceService.HasLockedDate(date),
	})
}

// dateParam reads and validates the ?date query param, defaulting to today.
func dateParam(c *gin.Context) (string, bool) {
	raw := c.Query("date")
	if raw == "" {
		return model.Today(), true
	}
	return canonicalDate(c, raw)
}

func canonicalDate(c *gin.Context, raw string) (string, bool) {
	date, err := model.ParseDate(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"date": err.Error()})
		return "", false
	}
	return date, true
}
