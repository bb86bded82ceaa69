package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/rollcall-backend/internal/middleware"
	"github.com/classtrack/rollcall-backend/internal/model"
	"github.com/classtrack/rollcall-backend/internal/response"
	"github.com/classtrack/rollcall-backend/internal/service"
)

// ReportHandler serves the records table and the analytics views. Everything
// here is read-only and derived on demand.
type ReportHandler struct {
	attendanceService *service.AttendanceService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(attendanceService *service.AttendanceService) *ReportHandler {
	return &ReportHandler{attendanceService: attendanceService}
}

// Records godoc
// GET /api/v1/records?filter=all_time|current_month
// Returns every rostered student with derived stats, the records table.
func (h *ReportHandler) Records(c *gin.Context) {
	filter, ok := filterParam(c)
	if !ok {
		return
	}

	rows, err := h.attendanceService.ReportRows(middleware.GetClaims(c).Role, filter)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"filter":   filter,
		"students": rows,
		"total":    len(rows),
	})
}

// StudentStats godoc
// GET /api/v1/records/:id/stats?filter=...
// Returns one student's derived numbers. 404 for unrostered ids.
func (h *ReportHandler) StudentStats(c *gin.Context) {
	filter, ok := filterParam(c)
	if !ok {
		return
	}

	stats, err := h.attendanceService.StudentStats(middleware.GetClaims(c).Role, c.Param("id"), filter)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_id": c.Param("id"),
		"filter":     filter,
		"stats":      stats,
	})
}

// Summary godoc
// GET /api/v1/analytics/summary?filter=...
// Aggregates recorded days across the whole roster, the dashboard tiles.
func (h *ReportHandler) Summary(c *gin.Context) {
	filter, ok := filterParam(c)
	if !ok {
		return
	}

	overall, err := h.attendanceService.OverallStats(middleware.GetClaims(c).Role, filter)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"filter": filter, "overall": overall})
}

// Calendar godoc
// GET /api/v1/analytics/calendar/:id?year=2024&month=5
// Returns a student's day-by-day status for one month. Defaults to the
// current month.
func (h *ReportHandler) Calendar(c *gin.Context) {
	now := time.Now()
	year, ok := intQuery(c, "year", now.Year(), 2000, 2200)
	if !ok {
		return
	}
	month, ok := intQuery(c, "month", int(now.Month()), 1, 12)
	if !ok {
		return
	}

	days, err := h.attendanceService.Calendar(middleware.GetClaims(c).Role, c.Param("id"), year, time.Month(month))
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_id": c.Param("id"),
		"year":       year,
		"month":      month,
		"days":       days,
	})
}

// Weekday godoc
// GET /api/v1/analytics/weekday
// Returns the average presence rate per weekday across all records.
func (h *ReportHandler) Weekday(c *gin.Context) {
	pattern, err := h.attendanceService.WeekdayPattern(middleware.GetClaims(c).Role)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pattern": pattern})
}

// filterParam reads and validates the ?filter query param.
func filterParam(c *gin.Context) (model.DateFilter, bool) {
	filter, err := model.ParseDateFilter(c.Query("filter"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"filter": err.Error()})
		return "", false
	}
	return filter, true
}

func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{name: "must be an integer between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)})
		return 0, false
	}
	return v, true
}
