package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/classtrack/rollcall-backend/internal/ledger"
	"github.com/classtrack/rollcall-backend/internal/metrics"
	"github.com/classtrack/rollcall-backend/internal/model"
	"github.com/classtrack/rollcall-backend/internal/policy"
)

// SnapshotStore persists the full tracker state. Writes overwrite.
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
}

// AttendanceService owns the tracker's mutable state: roster, presence
// ledger, and the teacher lock book. One mutex serializes every operation,
// preserving the run-to-completion model of the original single-threaded
// app. In-memory state is the source of truth; store writes are best-effort
// and never roll back memory.
type AttendanceService struct {
	mu     sync.Mutex
	roster *ledger.Roster
	book   *ledger.Ledger
	locks  *ledger.LockBook
	store  SnapshotStore
	log    zerolog.Logger
	now    func() time.Time
}

// NewAttendanceService loads persisted state and seeds the default roster on
// first run.
func NewAttendanceService(ctx context.Context, store SnapshotStore, log zerolog.Logger) (*AttendanceService, error) {
	s := &AttendanceService{
		roster: ledger.NewRoster(),
		book:   ledger.NewLedger(),
		locks:  ledger.NewLockBook(),
		store:  store,
		log:    log.With().Str("component", "attendance_service").Logger(),
		now:    time.Now,
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.roster.Restore(snap.Students)
	s.book.Restore(snap.Records)
	s.locks.Restore(snap.Locks)

	if s.roster.Len() == 0 {
		for _, student := range model.DefaultRoster {
			_ = s.roster.Add(student)
		}
		s.persistLocked(ctx, "save")
		s.log.Info().Int("students", s.roster.Len()).Msg("Seeded default roster")
	}

	return s, nil
}

// ─── Attendance mutations ──────────────────────────────────────────────────

// Mark upserts one presence entry. The student must be rostered: the tracker
// validates references at write time instead of tolerating orphan records.
func (s *AttendanceService) Mark(ctx context.Context, role model.Role, date, studentID string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorizeMutation(role, policy.ActionMarkAttendance, date); err != nil {
		return err
	}
	if !s.roster.Has(studentID) {
		return ErrStudentNotFound
	}

	s.book.SetPresence(date, studentID, present)
	metrics.AttendanceMutationsTotal.WithLabelValues("mark").Inc()
	return nil
}

// Toggle flips one presence entry, treating an unrecorded student as absent.
// Returns the new presence value.
func (s *AttendanceService) Toggle(ctx context.Context, role model.Role, date, studentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorizeMutation(role, policy.ActionMarkAttendance, date); err != nil {
		return false, err
	}
	if !s.roster.Has(studentID) {
		return false, ErrStudentNotFound
	}

	next := s.book.TogglePresence(date, studentID)
	metrics.AttendanceMutationsTotal.WithLabelValues("toggle").Inc()
	return next, nil
}

// MarkAll sets every given student for the date in one batch. All ids are
// validated before any entry changes, so a bad id leaves the ledger intact.
func (s *AttendanceService) MarkAll(ctx context.Context, role model.Role, date string, studentIDs []string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorizeMutation(role, policy.ActionMarkAttendance, date); err != nil {
		return err
	}
	for _, id := range studentIDs {
		if !s.roster.Has(id) {
			return fmt.Errorf("%w: %s", ErrStudentNotFound, id)
		}
	}

	s.book.MarkAll(date, studentIDs, present)
	metrics.AttendanceMutationsTotal.WithLabelValues("bulk").Inc()
	return nil
}

// ClearDate removes the whole day from the ledger, returning it to the
// "no record" state rather than "all absent".
func (s *AttendanceService) ClearDate(ctx context.Context, role model.Role, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorizeMutation(role, policy.ActionMarkAttendance, date); err != nil {
		return err
	}

	s.book.ClearDate(date)
	metrics.AttendanceMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}

// Save commits the working state for a date. For a teacher this is the
// once-per-day operation: the first save sets the date's lock, a second
// fails with the daily-lock error. Admin saves never lock.
func (s *AttendanceService) Save(ctx context.Context, role model.Role, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionSaveAttendance); err != nil {
		return err
	}
	if s.locks.ActiveFor(role, date) {
		metrics.DailyLockRejectionsTotal.Inc()
		return ErrDailyLock
	}

	if role == model.RoleTeacher {
		s.locks.Lock(date)
	}
	s.persistLocked(ctx, "save")
	return nil
}

// ─── Roster operations ─────────────────────────────────────────────────────

// Students lists the roster in insertion order.
func (s *AttendanceService) Students(role model.Role) ([]model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewRecords); err != nil {
		return nil, err
	}
	return s.roster.List(), nil
}

// AddStudent registers a new student. Admin only.
func (s *AttendanceService) AddStudent(ctx context.Context, role model.Role, student model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionManageRoster); err != nil {
		return err
	}
	if err := s.roster.Add(student); err != nil {
		return mapLedgerErr(err)
	}

	s.persistLocked(ctx, "save")
	return nil
}

// RemoveStudent deletes a student and cascades the removal across every
// date's entries. Admin only.
func (s *AttendanceService) RemoveStudent(ctx context.Context, role model.Role, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionManageRoster); err != nil {
		return err
	}
	if err := s.roster.Remove(studentID); err != nil {
		return mapLedgerErr(err)
	}
	s.book.RemoveStudent(studentID)

	s.persistLocked(ctx, "save")
	return nil
}

// ─── Views and derived statistics ──────────────────────────────────────────

// DayEntry is one roster row of the per-day attendance view.
type DayEntry struct {
	Student model.Student        `json:"student"`
	Status  model.PresenceStatus `json:"status"`
}

// Day returns the three-state status of every rostered student for a date.
func (s *AttendanceService) Day(role model.Role, date string) ([]DayEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewRecords); err != nil {
		return nil, err
	}

	students := s.roster.List()
	entries := make([]DayEntry, len(students))
	for i, student := range students {
		entries[i] = DayEntry{Student: student, Status: s.book.Status(date, student.ID)}
	}
	return entries, nil
}

// IsPresent reports an explicit present entry; an unrecorded student is not
// present.
func (s *AttendanceService) IsPresent(date, studentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.IsPresent(date, studentID)
}

// HasLockedDate reports whether a teacher save is already committed for the
// date, so clients can disable their controls up front.
func (s *AttendanceService) HasLockedDate(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locks.HasLocked(date)
}

// StudentStats derives one student's numbers. Unknown ids fail with
// ErrStudentNotFound — a removed student has no stats.
func (s *AttendanceService) StudentStats(role model.Role, studentID string, filter model.DateFilter) (model.StudentStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewRecords); err != nil {
		return model.StudentStats{}, err
	}
	if !s.roster.Has(studentID) {
		return model.StudentStats{}, ErrStudentNotFound
	}
	return s.book.Stats(studentID, filter, s.now()), nil
}

// ReportRows pairs every rostered student with its derived stats, in roster
// order. Shared by the records table and the exporters.
func (s *AttendanceService) ReportRows(role model.Role, filter model.DateFilter) ([]model.StudentReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewRecords); err != nil {
		return nil, err
	}
	return s.reportRowsLocked(filter), nil
}

func (s *AttendanceService) reportRowsLocked(filter model.DateFilter) []model.StudentReport {
	students := s.roster.List()
	rows := make([]model.StudentReport, len(students))
	now := s.now()
	for i, student := range students {
		rows[i] = model.StudentReport{
			Student: student,
			Stats:   s.book.Stats(student.ID, filter, now),
		}
	}
	return rows
}

// OverallStats aggregates recorded days across the whole roster.
func (s *AttendanceService) OverallStats(role model.Role, filter model.DateFilter) (model.OverallStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewAnalytics); err != nil {
		return model.OverallStats{}, err
	}

	var overall model.OverallStats
	now := s.now()
	for _, id := range s.roster.IDs() {
		stats := s.book.Stats(id, filter, now)
		overall.TotalDays += stats.TotalDays
		overall.PresentDays += stats.PresentDays
	}
	if overall.TotalDays > 0 {
		overall.AttendanceRate = int(float64(overall.PresentDays)/float64(overall.TotalDays)*100 + 0.5)
	}
	return overall, nil
}

// Calendar returns one student's day-by-day status for a month.
func (s *AttendanceService) Calendar(role model.Role, studentID string, year int, month time.Month) ([]model.CalendarDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewAnalytics); err != nil {
		return nil, err
	}
	if !s.roster.Has(studentID) {
		return nil, ErrStudentNotFound
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	days := make([]model.CalendarDay, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(model.DateLayout)
		days[d-1] = model.CalendarDay{Date: date, Status: s.book.Status(date, studentID)}
	}
	return days, nil
}

// WeekdayPattern aggregates recorded entries per weekday across the roster,
// the data series behind the weekly pattern chart.
func (s *AttendanceService) WeekdayPattern(role model.Role) ([]model.WeekdayPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionViewAnalytics); err != nil {
		return nil, err
	}

	recorded := make([]int, 7)
	present := make([]int, 7)
	for date, day := range s.book.Records() {
		t, err := time.Parse(model.DateLayout, date)
		if err != nil {
			continue
		}
		wd := int(t.Weekday())
		for _, p := range day {
			recorded[wd]++
			if p {
				present[wd]++
			}
		}
	}

	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	pattern := make([]model.WeekdayPattern, 7)
	for i := range pattern {
		pattern[i] = model.WeekdayPattern{Weekday: names[i], Recorded: recorded[i], Present: present[i]}
		if recorded[i] > 0 {
			pattern[i].PresentRate = int(float64(present[i])/float64(recorded[i])*100 + 0.5)
		}
	}
	return pattern, nil
}

// ─── Administration and persistence ────────────────────────────────────────

// ResetLocks clears every teacher daily lock — the out-of-band unlock.
func (s *AttendanceService) ResetLocks(ctx context.Context, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionManageSettings); err != nil {
		return err
	}
	s.locks.Reset()
	s.persistLocked(ctx, "save")
	return nil
}

// ClearAllData drops every attendance record and lock. The roster survives.
func (s *AttendanceService) ClearAllData(ctx context.Context, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionManageSettings); err != nil {
		return err
	}
	s.book.Restore(model.Records{})
	s.locks.Reset()
	s.persistLocked(ctx, "save")
	return nil
}

// ImportSnapshot replaces the tracker state wholesale from an uploaded
// document, mirroring the original's JSON import.
func (s *AttendanceService) ImportSnapshot(ctx context.Context, role model.Role, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(role, policy.ActionManageSettings); err != nil {
		return err
	}
	s.roster.Restore(snap.Students)
	s.book.Restore(snap.Records)
	s.locks.Restore(snap.Locks)
	s.persistLocked(ctx, "save")
	return nil
}

// Snapshot copies the current state for export.
func (s *AttendanceService) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// PersistSnapshot writes the current state to the store. Used by the
// autosave worker and the shutdown path.
func (s *AttendanceService) PersistSnapshot(ctx context.Context, trigger string) error {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.store.Save(ctx, snap); err != nil {
		metrics.SnapshotSavesTotal.WithLabelValues(trigger, "error").Inc()
		return err
	}
	metrics.SnapshotSavesTotal.WithLabelValues(trigger, "ok").Inc()
	return nil
}

// ─── Internal helpers ──────────────────────────────────────────────────────

func (s *AttendanceService) authorize(role model.Role, action policy.Action) error {
	if !policy.CanPerform(role, action) {
		metrics.PolicyDenialsTotal.WithLabelValues(string(role), string(action)).Inc()
		return ErrForbidden
	}
	return nil
}

// authorizeMutation gates attendance mutations: policy first, then the
// per-date teacher lock.
func (s *AttendanceService) authorizeMutation(role model.Role, action policy.Action, date string) error {
	if err := s.authorize(role, action); err != nil {
		return err
	}
	if s.locks.ActiveFor(role, date) {
		metrics.DailyLockRejectionsTotal.Inc()
		return ErrDailyLock
	}
	return nil
}

func (s *AttendanceService) snapshotLocked() *model.Snapshot {
	students := s.roster.List()
	records := make(model.Records, len(s.book.Records()))
	for date, day := range s.book.Records() {
		entries := make(map[string]bool, len(day))
		for id, p := range day {
			entries[id] = p
		}
		records[date] = entries
	}
	locks := make(map[string]bool, len(s.locks.Locks()))
	for date, v := range s.locks.Locks() {
		locks[date] = v
	}
	return &model.Snapshot{Students: students, Records: records, Locks: locks}
}

// persistLocked writes the snapshot while already holding the mutex.
// Persistence is best-effort: failures are logged, never surfaced, and the
// in-memory state stays authoritative.
func (s *AttendanceService) persistLocked(ctx context.Context, trigger string) {
	snap := s.snapshotLocked()
	if err := s.store.Save(ctx, snap); err != nil {
		metrics.SnapshotSavesTotal.WithLabelValues(trigger, "error").Inc()
		s.log.Error().Err(err).Msg("Snapshot persist failed; in-memory state unchanged")
		return
	}
	metrics.SnapshotSavesTotal.WithLabelValues(trigger, "ok").Inc()
}

func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, ledger.ErrStudentNotFound):
		return ErrStudentNotFound
	case errors.Is(err, ledger.ErrDuplicateStudent):
		return ErrDuplicateStudent
	case errors.Is(err, ledger.ErrEmptyField):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
