package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day key format used throughout the records map.
const DateLayout = "2006-01-02"

// ParseDate validates an ISO calendar day (YYYY-MM-DD) and returns it in
// canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

// Today returns the current calendar day in records-key form.
func Today() string {
	return time.Now().Format(DateLayout)
}

// PresenceStatus is the explicit three-state presence variant. The records
// map only stores Present and Absent; Unrecorded is the absence of an entry.
type PresenceStatus string

const (
	StatusUnrecorded PresenceStatus = "unrecorded"
	StatusPresent    PresenceStatus = "present"
	StatusAbsent     PresenceStatus = "absent"
)

// Records is the sparse per-day presence map: date → studentID → present.
// A missing student key means "no record", which is distinct from an
// explicit false ("marked absent").
type Records map[string]map[string]bool

// DateFilter scopes derived statistics to a window of record dates.
type DateFilter string

const (
	FilterAllTime      DateFilter = "all_time"
	FilterCurrentMonth DateFilter = "current_month"
)

// ParseDateFilter maps the query-string form to a DateFilter, defaulting to
// all-time when empty.
func ParseDateFilter(s string) (DateFilter, error) {
	switch s {
	case "", string(FilterAllTime):
		return FilterAllTime, nil
	case string(FilterCurrentMonth), "current":
		return FilterCurrentMonth, nil
	}
	return "", fmt.Errorf("invalid date filter %q", s)
}

// StudentStats are derived on demand from the records map and never stored.
// TotalDays counts dates with any recorded entry for the student; unrecorded
// dates do not count.
type StudentStats struct {
	TotalDays      int `json:"total_days"`
	PresentDays    int `json:"present_days"`
	AbsentDays     int `json:"absent_days"`
	AttendanceRate int `json:"attendance_rate"`
}

// MarkRequest sets a single student's presence for a date.
type MarkRequest struct {
	Date      string `json:"date" binding:"required"`
	StudentID string `json:"student_id" binding:"required"`
	Present   *bool  `json:"present" binding:"required"`
}

// ToggleRequest flips a single student's presence for a date.
type ToggleRequest struct {
	Date      string `json:"date" binding:"required"`
	StudentID string `json:"student_id" binding:"required"`
}

// BulkMarkRequest marks a set of students for a date in one batch. Present
// selects between the bulk "mark present" and "mark absent" actions.
type BulkMarkRequest struct {
	Date       string   `json:"date" binding:"required"`
	StudentIDs []string `json:"student_ids" binding:"required,min=1"`
	Present    *bool    `json:"present" binding:"required"`
}

// ClearDateRequest removes a whole day from the records map.
type ClearDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// SaveRequest commits the working state for a date. For teachers this sets
// the once-per-day modification lock.
type SaveRequest struct {
	Date string `json:"date" binding:"required"`
}

// Snapshot is the full persisted tracker state, written as one overwrite.
type Snapshot struct {
	Students []Student       `json:"students"`
	Records  Records         `json:"attendance_records"`
	Locks    map[string]bool `json:"teacher_modifications"`
}
