package ledger

import (
	"errors"
	"testing"

	"github.com/classtrack/rollcall-backend/internal/model"
)

func TestRosterAddValidation(t *testing.T) {
	r := NewRoster()

	if err := r.Add(model.Student{ID: "", Name: "A"}); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("blank id: err = %v, want ErrEmptyField", err)
	}
	if err := r.Add(model.Student{ID: "S1", Name: "  "}); !errors.Is(err, ErrEmptyField) {
		t.Fatalf("blank name: err = %v, want ErrEmptyField", err)
	}

	if err := r.Add(model.Student{ID: "S1", Name: "Ada"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Add(model.Student{ID: "S1", Name: "Other"}); !errors.Is(err, ErrDuplicateStudent) {
		t.Fatalf("duplicate id: err = %v, want ErrDuplicateStudent", err)
	}
}

func TestRosterRemovePreservesOrder(t *testing.T) {
	r := NewRoster()
	for _, s := range []model.Student{
		{ID: "S1", Name: "A"}, {ID: "S2", Name: "B"}, {ID: "S3", Name: "C"},
	} {
		if err := r.Add(s); err != nil {
			t.Fatalf("add %s: %v", s.ID, err)
		}
	}

	if err := r.Remove("S2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Remove("S2"); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("second remove: err = %v, want ErrStudentNotFound", err)
	}

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "S1" || ids[1] != "S3" {
		t.Fatalf("ids after remove = %v, want [S1 S3]", ids)
	}
	if _, ok := r.Get("S3"); !ok {
		t.Fatal("index must be rebuilt after removal")
	}
}

func TestRosterRestoreDropsInvalid(t *testing.T) {
	r := NewRoster()
	r.Restore([]model.Student{
		{ID: "S1", Name: "A"},
		{ID: "S1", Name: "Dup"},
		{ID: "", Name: "Blank"},
		{ID: "S2", Name: "B"},
	})
	if r.Len() != 2 {
		t.Fatalf("restored roster size = %d, want 2", r.Len())
	}
}
