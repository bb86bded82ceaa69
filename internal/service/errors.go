package service

import "errors"

// Sentinel errors for the tracker's failure taxonomy. Every failure leaves
// in-memory state unchanged.
var (
	// ErrInvalidCredentials: the (username, password, role) triple did not
	// match the credential record for the requested role.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession: the operation requires an active session.
	ErrNoSession = errors.New("no active session")
	// ErrSessionInvalidated: the presented token no longer matches the
	// active session (replaced by a newer login or logged out).
	ErrSessionInvalidated = errors.New("session invalidated")
	// ErrForbidden: authenticated, but the role lacks permission.
	ErrForbidden = errors.New("role not permitted to perform this action")
	// ErrDailyLock: a teacher attempted a second same-day save or a
	// mutation after today's save. Distinct from ErrForbidden so clients
	// can explain the once-per-day rule.
	ErrDailyLock = errors.New("teacher has already saved attendance for this date")
	// ErrStudentNotFound: the referenced student id is not on the roster.
	ErrStudentNotFound = errors.New("student not found")
	// ErrDuplicateStudent: an add with an id that is already rostered.
	ErrDuplicateStudent = errors.New("student id already exists")
	// ErrValidation: malformed field values (blank id/name, bad date,
	// unknown setting value).
	ErrValidation = errors.New("validation failed")
)
