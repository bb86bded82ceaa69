package config

import "fmt"

// StorageKeyStruct centralizes every key the tracker writes to the key-value
// store. The store is treated as opaque: full JSON documents per key,
// overwritten on save.
type StorageKeyStruct struct{}

func NewStorageKeyStruct() *StorageKeyStruct {
	return &StorageKeyStruct{}
}

// Students returns the key holding the ordered roster.
func (k *StorageKeyStruct) Students() string {
	return "rollcall:students"
}

// AttendanceRecords returns the key holding the date → student → presence map.
func (k *StorageKeyStruct) AttendanceRecords() string {
	return "rollcall:attendanceRecords"
}

// TeacherModifications returns the key holding the per-date teacher locks.
func (k *StorageKeyStruct) TeacherModifications() string {
	return "rollcall:teacherModifications"
}

// CurrentUser returns the key holding the active session snapshot used for
// resume-on-restart.
func (k *StorageKeyStruct) CurrentUser() string {
	return "rollcall:currentUser"
}

// Settings returns the hash key holding user settings.
func (k *StorageKeyStruct) Settings() string {
	return "rollcall:settings"
}

// Credential returns the key holding one role's credential record.
func (k *StorageKeyStruct) Credential(role string) string {
	return fmt.Sprintf("rollcall:credentials:%s", role)
}

var StorageKey = NewStorageKeyStruct()
