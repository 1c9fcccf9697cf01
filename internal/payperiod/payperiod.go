// Package payperiod computes salary-cycle months ("pay periods").
//
// A pay period starts at local midnight on the user's salary day and ends one
// millisecond before the next period starts. Salary days past the end of a
// short month are clamped to that month's last day, so a salary day of 31
// starts on Feb 28 (or 29), Apr 30, and so on.
package payperiod

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

// Period is an inclusive [Start, End] interval. End is exactly one millisecond
// before the following period's Start.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

type periodJSON struct {
	StartISO string `json:"startISO"`
	EndISO   string `json:"endISO"`
	Label    string `json:"label"`
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodJSON{
		StartISO: calendar.FormatISO(p.Start),
		EndISO:   calendar.FormatISO(p.End),
		Label:    p.Label,
	})
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var raw periodJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339Nano, raw.StartISO)
	if err != nil {
		return fmt.Errorf("parse startISO: %w", err)
	}
	end, err := time.Parse(time.RFC3339Nano, raw.EndISO)
	if err != nil {
		return fmt.Errorf("parse endISO: %w", err)
	}
	*p = Period{Start: start, End: end, Label: raw.Label}
	return nil
}

// InvalidArgumentError is returned for out-of-range engine inputs.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func (e *InvalidArgumentError) Unwrap() error {
	return core.ErrInvalidArgument
}

// IsInvalidArgument reports whether err was caused by bad engine input.
func IsInvalidArgument(err error) bool {
	var iae *InvalidArgumentError
	return errors.As(err, &iae)
}

func checkSalaryDay(salaryDay int) error {
	if err := core.ValidateSalaryDay(salaryDay); err != nil {
		return &InvalidArgumentError{Field: "salaryDay", Message: err.Error()}
	}
	return nil
}

// Calculator binds a timezone and a label locale. The zero value is not
// usable; build one with New or Default.
type Calculator struct {
	Location *time.Location
	Locale   string
}

// New returns a calculator for the named IANA zone ("" means Asia/Seoul).
func New(timezone, locale string) (Calculator, error) {
	loc, err := calendar.LoadLocation(timezone)
	if err != nil {
		return Calculator{}, &InvalidArgumentError{Field: "timezone", Message: err.Error()}
	}
	if locale == "" {
		locale = core.DefaultLocale
	}
	return Calculator{Location: loc, Locale: locale}, nil
}

// Default is the Asia/Seoul calculator with Korean labels.
func Default() Calculator {
	return Calculator{
		Location: calendar.MustLoadLocation(calendar.DefaultTimezone),
		Locale:   core.DefaultLocale,
	}
}

// startIn returns local midnight of the clamped salary day of year/month.
func (c Calculator) startIn(year int, month time.Month, salaryDay int) time.Time {
	return calendar.Midnight(year, month, calendar.ClampDay(year, month, salaryDay), c.Location)
}

// periodFrom builds the period whose start is the clamped salary day of the
// given month.
func (c Calculator) periodFrom(year int, month time.Month, salaryDay int) Period {
	start := c.startIn(year, month, salaryDay)
	ny, nm := calendar.ShiftMonth(year, month, 1)
	end := c.startIn(ny, nm, salaryDay).Add(-time.Millisecond)
	return Period{Start: start, End: end, Label: Label(start, c.Locale, c.Location)}
}

// Get returns the pay period containing anchor.
func (c Calculator) Get(anchor time.Time, salaryDay int) (Period, error) {
	if err := checkSalaryDay(salaryDay); err != nil {
		return Period{}, err
	}

	year, month := c.startMonth(anchor, salaryDay)
	return c.periodFrom(year, month, salaryDay), nil
}

// startMonth returns the calendar month whose salary day opens the period
// containing anchor.
func (c Calculator) startMonth(anchor time.Time, salaryDay int) (int, time.Month) {
	local := anchor.In(c.Location)
	year, month := local.Year(), local.Month()
	if anchor.Before(c.startIn(year, month, salaryDay)) {
		year, month = calendar.ShiftMonth(year, month, -1)
	}
	return year, month
}

// Range returns before+1+after consecutive periods, oldest first, centered on
// the period containing anchor. Offsets are applied to the month the
// anchor's period starts in and re-clamped, so periods never drift or overlap.
func (c Calculator) Range(anchor time.Time, salaryDay, before, after int) ([]Period, error) {
	if before < 0 || after < 0 {
		return nil, &InvalidArgumentError{Field: "count", Message: "before and after must not be negative"}
	}
	if err := checkSalaryDay(salaryDay); err != nil {
		return nil, err
	}

	year, month := c.startMonth(anchor, salaryDay)
	periods := make([]Period, 0, before+1+after)
	for i := -before; i <= after; i++ {
		y, m := calendar.ShiftMonth(year, month, i)
		periods = append(periods, c.periodFrom(y, m, salaryDay))
	}
	return periods, nil
}

// Same reports whether a and b fall in the same pay period. There is no
// tolerance: a period's End and End+1ms are different periods.
func (c Calculator) Same(a, b time.Time, salaryDay int) (bool, error) {
	pa, err := c.Get(a, salaryDay)
	if err != nil {
		return false, err
	}
	pb, err := c.Get(b, salaryDay)
	if err != nil {
		return false, err
	}
	return pa.Start.Equal(pb.Start), nil
}

// Previous returns the period immediately before p.
func (c Calculator) Previous(p Period, salaryDay int) (Period, error) {
	return c.Get(p.Start.Add(-time.Millisecond), salaryDay)
}

// Next returns the period immediately after p.
func (c Calculator) Next(p Period, salaryDay int) (Period, error) {
	return c.Get(p.End.Add(time.Millisecond), salaryDay)
}

// Label names a period by its start month: "2025년 10월" for Korean locales,
// "October 2025" otherwise.
func Label(start time.Time, locale string, loc *time.Location) string {
	local := start.In(loc)
	if calendar.IsKorean(locale) {
		return fmt.Sprintf("%d년 %d월", local.Year(), int(local.Month()))
	}
	return local.Format("January 2006")
}

// GetPayPeriod is Get on a calculator for timezone with Korean labels.
func GetPayPeriod(anchor time.Time, salaryDay int, timezone string) (Period, error) {
	c, err := New(timezone, core.DefaultLocale)
	if err != nil {
		return Period{}, err
	}
	return c.Get(anchor, salaryDay)
}

// GetPayPeriodRange is Range on a calculator for timezone with Korean labels.
func GetPayPeriodRange(anchor time.Time, salaryDay, before, after int, timezone string) ([]Period, error) {
	c, err := New(timezone, core.DefaultLocale)
	if err != nil {
		return nil, err
	}
	return c.Range(anchor, salaryDay, before, after)
}

// IsSamePayPeriod is Same on a calculator for timezone.
func IsSamePayPeriod(a, b time.Time, salaryDay int, timezone string) (bool, error) {
	c, err := New(timezone, core.DefaultLocale)
	if err != nil {
		return false, err
	}
	return c.Same(a, b, salaryDay)
}
