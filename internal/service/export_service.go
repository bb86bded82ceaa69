package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/classtrack/rollcall-backend/internal/model"
)

// csvHeader is the exact export header the original tracker produced.
var csvHeader = []string{
	"Student Name", "Student ID", "Total Days", "Present Days", "Absent Days", "Attendance Rate",
}

// ExportService renders the tracker's export documents from the live state.
// Nothing here mutates; role checks ride on the underlying view calls.
type ExportService struct {
	attendance *AttendanceService
	log        zerolog.Logger
}

func NewExportService(attendance *AttendanceService, log zerolog.Logger) *ExportService {
	return &ExportService{
		attendance: attendance,
		log:        log.With().Str("component", "export_service").Logger(),
	}
}

// CSV renders the per-student stats table. Rates carry a percent suffix,
// matching the original file format.
func (s *ExportService) CSV(role model.Role, filter model.DateFilter) ([]byte, error) {
	rows, err := s.attendance.ReportRows(role, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			row.ID,
			fmt.Sprintf("%d", row.Stats.TotalDays),
			fmt.Sprintf("%d", row.Stats.PresentDays),
			fmt.Sprintf("%d", row.Stats.AbsentDays),
			fmt.Sprintf("%d%%", row.Stats.AttendanceRate),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Report builds the JSON export document: every student with stats plus the
// raw records map.
func (s *ExportService) Report(role model.Role, filter model.DateFilter) (*model.Report, error) {
	rows, err := s.attendance.ReportRows(role, filter)
	if err != nil {
		return nil, err
	}

	snap := s.attendance.Snapshot()
	return &model.Report{
		GeneratedAt:   time.Now().UTC(),
		TotalStudents: len(rows),
		Students:      rows,
		Records:       snap.Records,
	}, nil
}
