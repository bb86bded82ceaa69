package ledger

import (
	"strings"

	"github.com/classtrack/rollcall-backend/internal/model"
)

// Roster is the ordered set of known students, keyed by id.
type Roster struct {
	students []model.Student
	index    map[string]int
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{index: map[string]int{}}
}

// Restore replaces the roster contents with a persisted student list,
// dropping entries with duplicate or blank ids.
func (r *Roster) Restore(students []model.Student) {
	r.students = r.students[:0]
	r.index = map[string]int{}
	for _, s := range students {
		if err := r.Add(s); err != nil {
			continue
		}
	}
}

// Add registers a student. The id must be unique and both fields non-blank.
func (r *Roster) Add(s model.Student) error {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	if s.ID == "" || s.Name == "" {
		return ErrEmptyField
	}
	if _, exists := r.index[s.ID]; exists {
		return ErrDuplicateStudent
	}
	r.index[s.ID] = len(r.students)
	r.students = append(r.students, s)
	return nil
}

// Remove deletes a student by id, preserving the order of the rest.
func (r *Roster) Remove(studentID string) error {
	pos, ok := r.index[studentID]
	if !ok {
		return ErrStudentNotFound
	}
	r.students = append(r.students[:pos], r.students[pos+1:]...)
	delete(r.index, studentID)
	for i := pos; i < len(r.students); i++ {
		r.index[r.students[i].ID] = i
	}
	return nil
}

// Get looks up a student by id.
func (r *Roster) Get(studentID string) (model.Student, bool) {
	pos, ok := r.index[studentID]
	if !ok {
		return model.Student{}, false
	}
	return r.students[pos], true
}

// Has reports whether the id is rostered.
func (r *Roster) Has(studentID string) bool {
	_, ok := r.index[studentID]
	return ok
}

// List returns a copy of the roster in insertion order.
func (r *Roster) List() []model.Student {
	out := make([]model.Student, len(r.students))
	copy(out, r.students)
	return out
}

// IDs returns every rostered id in insertion order.
func (r *Roster) IDs() []string {
	out := make([]string, len(r.students))
	for i, s := range r.students {
		out[i] = s.ID
	}
	return out
}

// Len returns the roster size.
func (r *Roster) Len() int {
	return len(r.students)
}
