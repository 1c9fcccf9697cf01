package services

import (
	"context"
	"fmt"
	"strings"

	"paymonth/internal/core"
)

type SettingsStore interface {
	GetUserSettings(ctx context.Context, userID string) (core.UserSettings, error)
	UpsertUserSettings(ctx context.Context, s core.UserSettings) (core.UserSettings, error)
}

// SettingsPatch holds the fields of a partial settings update. Nil fields
// are left unchanged.
type SettingsPatch struct {
	Name      *string
	SalaryDay *int
	Currency  *string
	Locale    *string
}

type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the stored settings, or the defaults for a new user.
func (s *SettingsService) Get(ctx context.Context, userID string) (core.UserSettings, error) {
	settings, err := s.store.GetUserSettings(ctx, userID)
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, userID string, patch SettingsPatch) (core.UserSettings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return core.UserSettings{}, err
	}

	if patch.Name != nil {
		settings.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.SalaryDay != nil {
		settings.SalaryDay = *patch.SalaryDay
	}
	if patch.Currency != nil {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*patch.Currency))
	}
	if patch.Locale != nil {
		settings.Locale = strings.TrimSpace(*patch.Locale)
	}
	settings.UserID = userID

	if err := settings.Validate(); err != nil {
		return core.UserSettings{}, err
	}

	saved, err := s.store.UpsertUserSettings(ctx, settings)
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return saved, nil
}
