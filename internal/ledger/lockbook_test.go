package ledger

import (
	"testing"

	"github.com/classtrack/rollcall-backend/internal/model"
)

func TestLockIdempotentAndMonotonic(t *testing.T) {
	b := NewLockBook()
	if b.HasLocked("2024-01-01") {
		t.Fatal("fresh book must have no locks")
	}

	b.Lock("2024-01-01")
	b.Lock("2024-01-01")
	if !b.HasLocked("2024-01-01") {
		t.Fatal("double lock must leave the date locked")
	}
	if b.HasLocked("2024-01-02") {
		t.Fatal("locks are per-date")
	}
}

func TestActiveForRole(t *testing.T) {
	b := NewLockBook()
	b.Lock("2024-01-01")

	if !b.ActiveFor(model.RoleTeacher, "2024-01-01") {
		t.Fatal("teacher must be blocked on a locked date")
	}
	if b.ActiveFor(model.RoleAdmin, "2024-01-01") {
		t.Fatal("admin is never locked out")
	}
	if b.ActiveFor(model.RoleStudent, "2024-01-01") {
		t.Fatal("lock applies to the teacher role only")
	}
	if b.ActiveFor(model.RoleTeacher, "2024-01-02") {
		t.Fatal("unlocked date must not block")
	}
}

func TestReset(t *testing.T) {
	b := NewLockBook()
	b.Lock("2024-01-01")
	b.Lock("2024-01-02")
	b.Reset()
	if b.HasLocked("2024-01-01") || b.HasLocked("2024-01-02") {
		t.Fatal("reset must clear every lock")
	}
}
