package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/rollcall-backend/internal/middleware"
	"github.com/classtrack/rollcall-backend/internal/response"
	"github.com/classtrack/rollcall-backend/internal/service"
)

// ExportHandler serves the CSV and JSON report downloads.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CSV godoc
// GET /api/v1/export/csv?filter=...
// Downloads the per-student stats table as a CSV attachment.
func (h *ExportHandler) CSV(c *gin.Context) {
	filter, ok := filterParam(c)
	if !ok {
		return
	}

	data, err := h.exportService.CSV(middleware.GetClaims(c).Role, filter)
	if err != nil {
		failFromService(c, err)
		return
	}

	filename := fmt.Sprintf("attendance_report_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// Report godoc
// GET /api/v1/export/report?filter=...
// Returns the full JSON report document: every student with stats plus the
// raw records map.
func (h *ExportHandler) Report(c *gin.Context) {
	filter, ok := filterParam(c)
	if !ok {
		return
	}

	report, err := h.exportService.Report(middleware.GetClaims(c).Role, filter)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}
