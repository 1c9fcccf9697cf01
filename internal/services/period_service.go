package services

import (
	"context"
	"fmt"
	"time"

	"paymonth/internal/core"
	"paymonth/internal/payperiod"
)

// MaxRangeSpan caps the before/after counts of a period range.
const MaxRangeSpan = 60

type SettingsReader interface {
	GetUserSettings(ctx context.Context, userID string) (core.UserSettings, error)
}

// PeriodService answers pay-period questions using each user's salary day
// and locale.
type PeriodService struct {
	settings SettingsReader
	loc      *time.Location
}

// NewPeriodService uses loc for every user; nil means Asia/Seoul.
func NewPeriodService(settings SettingsReader, loc *time.Location) *PeriodService {
	if loc == nil {
		loc = payperiod.Default().Location
	}
	return &PeriodService{settings: settings, loc: loc}
}

// Calculator returns the user's calculator and salary day.
func (s *PeriodService) Calculator(ctx context.Context, userID string) (payperiod.Calculator, int, error) {
	settings, err := s.settings.GetUserSettings(ctx, userID)
	if err != nil {
		return payperiod.Calculator{}, 0, fmt.Errorf("get settings: %w", err)
	}
	return payperiod.Calculator{Location: s.loc, Locale: settings.Locale}, settings.SalaryDay, nil
}

func (s *PeriodService) Current(ctx context.Context, userID string, anchor time.Time) (payperiod.Period, error) {
	calc, salaryDay, err := s.Calculator(ctx, userID)
	if err != nil {
		return payperiod.Period{}, err
	}
	return calc.Get(anchor, salaryDay)
}

// Range returns before+1+after periods around anchor, oldest first. Counts
// above MaxRangeSpan are rejected.
func (s *PeriodService) Range(ctx context.Context, userID string, anchor time.Time, before, after int) ([]payperiod.Period, error) {
	errs := core.ValidationErrors{}
	if before > MaxRangeSpan {
		errs["before"] = fmt.Sprintf("must be at most %d", MaxRangeSpan)
	}
	if after > MaxRangeSpan {
		errs["after"] = fmt.Sprintf("must be at most %d", MaxRangeSpan)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	calc, salaryDay, err := s.Calculator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return calc.Range(anchor, salaryDay, before, after)
}
