package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/classtrack/rollcall-backend/internal/model"
)

// SettingStore persists the user settings hash.
type SettingStore interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

var (
	validThemes = map[string]bool{"light": true, "dark": true, "auto": true}
	validColors = map[string]bool{"blue": true, "green": true, "purple": true, "orange": true}
)

// SettingService validates and stores the tracker's user settings. Unknown
// keys and out-of-range values are rejected; reads overlay stored values on
// the defaults.
type SettingService struct {
	store SettingStore
	log   zerolog.Logger
}

func NewSettingService(store SettingStore, log zerolog.Logger) *SettingService {
	return &SettingService{
		store: store,
		log:   log.With().Str("component", "setting_service").Logger(),
	}
}

// GetAll returns every setting, with defaults filled in for missing keys.
func (s *SettingService) GetAll(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read settings")
		return nil, err
	}

	settings := make(map[string]string, len(model.DefaultSettings))
	for key, def := range model.DefaultSettings {
		if v, ok := stored[key]; ok {
			settings[key] = v
		} else {
			settings[key] = def
		}
	}
	return settings, nil
}

// Update validates and upserts the given settings. The whole batch is
// validated before any write, so a bad value changes nothing.
func (s *SettingService) Update(ctx context.Context, settings map[string]string) error {
	for key, value := range settings {
		if err := validateSetting(key, value); err != nil {
			return err
		}
	}
	for key, value := range settings {
		if err := s.store.Set(ctx, key, value); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to update setting")
			return err
		}
	}
	return nil
}

// AutoSaveInterval returns the configured autosave period, falling back to
// the default when unset or unreadable.
func (s *SettingService) AutoSaveInterval(ctx context.Context) time.Duration {
	stored, err := s.store.GetAll(ctx)
	if err != nil {
		return model.AutoSaveDefaultSeconds * time.Second
	}
	raw, ok := stored[model.SettingAutoSaveInterval]
	if !ok {
		return model.AutoSaveDefaultSeconds * time.Second
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < model.AutoSaveMinSeconds || seconds > model.AutoSaveMaxSeconds {
		return model.AutoSaveDefaultSeconds * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func validateSetting(key, value string) error {
	switch key {
	case model.SettingTheme:
		if !validThemes[value] {
			return fmt.Errorf("%w: theme must be one of light, dark, auto", ErrValidation)
		}
	case model.SettingColorScheme:
		if !validColors[value] {
			return fmt.Errorf("%w: unknown color scheme %q", ErrValidation, value)
		}
	case model.SettingAutoSaveInterval:
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < model.AutoSaveMinSeconds || seconds > model.AutoSaveMaxSeconds {
			return fmt.Errorf("%w: autoSaveInterval must be %d-%d seconds",
				ErrValidation, model.AutoSaveMinSeconds, model.AutoSaveMaxSeconds)
		}
	case model.SettingNotifications, model.SettingDailyReminders:
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: %s must be true or false", ErrValidation, key)
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrValidation, key)
	}
	return nil
}
