package model

// Setting keys. Values are stored as strings in the settings hash.
const (
	SettingTheme            = "theme"
	SettingColorScheme      = "colorScheme"
	SettingAutoSaveInterval = "autoSaveInterval" // seconds
	SettingNotifications    = "notificationsEnabled"
	SettingDailyReminders   = "dailyReminders"
)

// Autosave interval bounds, in seconds. The default matches the tracker's
// 30-second background save.
const (
	AutoSaveDefaultSeconds = 30
	AutoSaveMinSeconds     = 10
	AutoSaveMaxSeconds     = 300
)

// DefaultSettings are applied for keys missing from the store.
var DefaultSettings = map[string]string{
	SettingTheme:            "light",
	SettingColorScheme:      "blue",
	SettingAutoSaveInterval: "30",
	SettingNotifications:    "false",
	SettingDailyReminders:   "false",
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
