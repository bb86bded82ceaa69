package model

// Student is a roster entry. The ID is the identity key and is never reused
// across the attendance records once assigned.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddStudentRequest is the payload for registering a new student.
type AddStudentRequest struct {
	ID   string `json:"id" binding:"required,min=1,max=32"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// DefaultRoster is seeded on first run when the store holds no students,
// mirroring the stock roster the tracker ships with.
var DefaultRoster = []Student{
	{ID: "STU001", Name: "John Smith"},
	{ID: "STU002", Name: "Emma Johnson"},
	{ID: "STU003", Name: "Michael Brown"},
	{ID: "STU004", Name: "Sarah Davis"},
	{ID: "STU005", Name: "David Wilson"},
	{ID: "STU006", Name: "Lisa Anderson"},
	{ID: "STU007", Name: "James Taylor"},
	{ID: "STU008", Name: "Jennifer Martinez"},
}
