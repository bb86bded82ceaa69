package ledger

import "github.com/classtrack/rollcall-backend/internal/model"

// LockBook tracks, per calendar date, whether a teacher has already committed
// a save. Locking is monotonic per date: there is no unlock in normal flow,
// only the administrative reset.
type LockBook struct {
	locked map[string]bool
}

// NewLockBook creates an empty lock book.
func NewLockBook() *LockBook {
	return &LockBook{locked: map[string]bool{}}
}

// Restore replaces the lock book contents with the persisted map.
func (b *LockBook) Restore(locks map[string]bool) {
	b.locked = map[string]bool{}
	for date, v := range locks {
		if v {
			b.locked[date] = true
		}
	}
}

// Locks returns the underlying map for snapshotting. Callers must not
// mutate it.
func (b *LockBook) Locks() map[string]bool {
	return b.locked
}

// HasLocked reports whether a teacher save was already committed for date.
func (b *LockBook) HasLocked(date string) bool {
	return b.locked[date]
}

// Lock idempotently marks date as locked.
func (b *LockBook) Lock(date string) {
	b.locked[date] = true
}

// ActiveFor reports whether the lock blocks the given role on date. Only the
// teacher role is ever locked out.
func (b *LockBook) ActiveFor(role model.Role, date string) bool {
	return role == model.RoleTeacher && b.HasLocked(date)
}

// Reset clears every lock. Administrative use only.
func (b *LockBook) Reset() {
	b.locked = map[string]bool{}
}
