// Package policy is the single access-control table for the tracker. Every
// call site consults CanPerform instead of re-deriving role rules locally.
package policy

import "github.com/classtrack/rollcall-backend/internal/model"

// Action is an operation class subject to role-based access control.
type Action string

const (
	ActionViewRecords    Action = "view_records"
	ActionViewAnalytics  Action = "view_analytics"
	ActionMarkAttendance Action = "mark_attendance"
	ActionSaveAttendance Action = "save_attendance"
	ActionManageRoster   Action = "manage_roster"
	ActionManageSettings Action = "manage_settings"
)

// Actions lists every action, used by tests to enumerate the full table.
var Actions = []Action{
	ActionViewRecords,
	ActionViewAnalytics,
	ActionMarkAttendance,
	ActionSaveAttendance,
	ActionManageRoster,
	ActionManageSettings,
}

var allowed = map[model.Role]map[Action]bool{
	model.RoleAdmin: {
		ActionViewRecords:    true,
		ActionViewAnalytics:  true,
		ActionMarkAttendance: true,
		ActionSaveAttendance: true,
		ActionManageRoster:   true,
		ActionManageSettings: true,
	},
	model.RoleTeacher: {
		ActionViewRecords:    true,
		ActionViewAnalytics:  true,
		ActionMarkAttendance: true,
		ActionSaveAttendance: true,
	},
	model.RoleStudent: {
		ActionViewRecords:   true,
		ActionViewAnalytics: true,
	},
}

// CanPerform reports whether role may perform action. Unknown roles and
// unknown actions are denied.
func CanPerform(role model.Role, action Action) bool {
	return allowed[role][action]
}
