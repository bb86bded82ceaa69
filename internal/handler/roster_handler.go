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

// RosterHandler handles student roster management.
type RosterHandler struct {
	attendanceService *service.AttendanceService
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(attendanceService *service.AttendanceService) *RosterHandler {
	return &RosterHandler{attendanceService: attendanceService}
}

// List godoc
// GET /api/v1/students
// Returns the roster in insertion order.
func (h *RosterHandler) List(c *gin.Context) {
	students, err := h.attendanceService.Students(middleware.GetClaims(c).Role)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"students": students,
		"total":    len(students),
	})
}

// Add godoc
// POST /api/v1/students
// Registers a new student. Duplicate ids are rejected with 409.
func (h *RosterHandler) Add(c *gin.Context) {
	var req model.AddStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student := model.Student{ID: req.ID, Name: req.Name}
	err := h.attendanceService.AddStudent(c.Request.Context(), middleware.GetClaims(c).Role, student)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// Remove godoc
// DELETE /api/v1/students/:id
// Deletes a student and every attendance entry referencing them.
func (h *RosterHandler) Remove(c *gin.Context) {
	studentID := c.Param("id")

	err := h.attendanceService.RemoveStudent(c.Request.Context(), middleware.GetClaims(c).Role, studentID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student_id": studentID, "removed": true})
}
