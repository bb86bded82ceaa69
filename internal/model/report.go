package model

import "time"

// StudentReport pairs a roster entry with its derived stats.
type StudentReport struct {
	Student
	Stats StudentStats `json:"stats"`
}

// Report is the JSON export document.
type Report struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	TotalStudents int             `json:"total_students"`
	Students      []StudentReport `json:"students"`
	Records       Records         `json:"attendance_records"`
}

// OverallStats aggregates recorded days across the whole roster, mirroring
// the dashboard summary tiles.
type OverallStats struct {
	TotalDays      int `json:"total_days"`
	PresentDays    int `json:"present_days"`
	AttendanceRate int `json:"attendance_rate"`
}

// CalendarDay is one cell of a student's month calendar view.
type CalendarDay struct {
	Date   string         `json:"date"`
	Status PresenceStatus `json:"status"`
}

// WeekdayPattern is the average presence rate per weekday (0=Sunday..6),
// feeding the weekly pattern chart.
type WeekdayPattern struct {
	Weekday     string `json:"weekday"`
	Recorded    int    `json:"recorded"`
	Present     int    `json:"present"`
	PresentRate int    `json:"present_rate"`
}
