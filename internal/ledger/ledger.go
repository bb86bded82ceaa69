// Package ledger holds the tracker's in-memory core: the sparse presence
// ledger, the roster, and the per-date teacher lock book. All three are
// policy-agnostic; callers are expected to have authorized the operation
// already. None of the types are safe for concurrent use — the owning
// service serializes access.
package ledger

import (
	"errors"
	"time"

	"github.com/classtrack/rollcall-backend/internal/model"
)

var (
	// ErrStudentNotFound is returned when an operation references an id
	// missing from the roster.
	ErrStudentNotFound = errors.New("student not found")
	// ErrDuplicateStudent is returned when adding an id already rostered.
	ErrDuplicateStudent = errors.New("student id already exists")
	// ErrEmptyField is returned for blank roster ids or names.
	ErrEmptyField = errors.New("id and name must be non-empty")
)

// Ledger is the sparse date → studentID → presence map. A date key with an
// empty inner map and a missing date key both mean "no activity that day".
type Ledger struct {
	records model.Records
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: model.Records{}}
}

// Restore replaces the ledger contents with a persisted records map.
func (l *Ledger) Restore(records model.Records) {
	if records == nil {
		records = model.Records{}
	}
	l.records = records
}

// Records returns the underlying map for snapshotting and export. Callers
// must not mutate it.
func (l *Ledger) Records() model.Records {
	return l.records
}

// SetPresence upserts the entry for (date, studentID).
func (l *Ledger) SetPresence(date, studentID string, present bool) {
	day, ok := l.records[date]
	if !ok {
		day = map[string]bool{}
		l.records[date] = day
	}
	day[studentID] = present
}

// TogglePresence flips the entry for (date, studentID), treating an
// unrecorded student as absent. Unset → absent → toggles to present.
func (l *Ledger) TogglePresence(date, studentID string) bool {
	next := !l.IsPresent(date, studentID)
	l.SetPresence(date, studentID, next)
	return next
}

// MarkAll sets every given id to present for date as one batch.
func (l *Ledger) MarkAll(date string, studentIDs []string, present bool) {
	for _, id := range studentIDs {
		l.SetPresence(date, id, present)
	}
}

// ClearDate removes the whole day, returning it to "no record" — not to
// "all absent".
func (l *Ledger) ClearDate(date string) {
	delete(l.records, date)
}

// IsPresent reports an explicit present entry. An unrecorded student is not
// present.
func (l *Ledger) IsPresent(date, studentID string) bool {
	return l.records[date][studentID]
}

// Status returns the explicit three-state presence for (date, studentID).
func (l *Ledger) Status(date, studentID string) model.PresenceStatus {
	day, ok := l.records[date]
	if !ok {
		return model.StatusUnrecorded
	}
	present, ok := day[studentID]
	if !ok {
		return model.StatusUnrecorded
	}
	if present {
		return model.StatusPresent
	}
	return model.StatusAbsent
}

// RemoveStudent cascades a roster removal across every date, leaving other
// students' entries untouched.
func (l *Ledger) RemoveStudent(studentID string) {
	for _, day := range l.records {
		delete(day, studentID)
	}
}

// Stats derives the attendance numbers for a student. Only dates carrying a
// recorded entry (present or explicit absent) count toward totals; the rate
// is 0 when nothing is recorded.
func (l *Ledger) Stats(studentID string, filter model.DateFilter, now time.Time) model.StudentStats {
	var stats model.StudentStats
	monthPrefix := now.Format("2006-01")

	for date, day := range l.records {
		if filter == model.FilterCurrentMonth && len(date) >= 7 && date[:7] != monthPrefix {
			continue
		}
		present, ok := day[studentID]
		if !ok {
			continue
		}
		stats.TotalDays++
		if present {
			stats.PresentDays++
		}
	}

	stats.AbsentDays = stats.TotalDays - stats.PresentDays
	if stats.TotalDays > 0 {
		stats.AttendanceRate = int(float64(stats.PresentDays)/float64(stats.TotalDays)*100 + 0.5)
	}
	return stats
}

// DayEntries returns a copy of one day's entries, nil when unrecorded.
func (l *Ledger) DayEntries(date string) map[string]bool {
	day, ok := l.records[date]
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(day))
	for id, present := range day {
		out[id] = present
	}
	return out
}
