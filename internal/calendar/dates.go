// Package calendar holds the timezone-aware date and number primitives shared
// by the pay-period engine and the quick-entry parser.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the zone used when callers do not specify one.
const DefaultTimezone = "Asia/Seoul"

// ISOMillis renders instants the way the JSON API and the database expect them.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

var (
	monthDayPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	isoDatePattern  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

	locations sync.Map // name -> *time.Location
)

// LoadLocation wraps time.LoadLocation with a process-wide cache. The empty
// name resolves to DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	actual, _ := locations.LoadOrStore(name, loc)
	return actual.(*time.Location), nil
}

// MustLoadLocation is LoadLocation for zone names known at compile time.
func MustLoadLocation(name string) *time.Location {
	loc, err := LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// DaysInMonth returns the Gregorian day count of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Midnight returns the first instant of the given local calendar day. Month
// and day values out of range are normalized as time.Date does.
//
// In zones whose clocks jump over 00:00 the day starts at the transition, and
// when 00:00 happens twice the earlier one is returned.
func Midnight(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()

	if !sameDay(t, y, m, d) {
		// skipped midnight: time.Date fell back into the previous day
		if _, end := t.ZoneBounds(); !end.IsZero() && sameDay(end, y, m, d) {
			return end
		}
		return t
	}

	if start, _ := t.ZoneBounds(); !start.IsZero() && !start.Before(t.Add(-24*time.Hour)) {
		before := start.Add(-time.Nanosecond)
		if sameDay(before, y, m, d) {
			_, offset := before.Zone()
			return time.Date(y, m, d, 0, 0, 0, 0, time.FixedZone("", offset)).In(loc)
		}
	}
	return t
}

func sameDay(t time.Time, y int, m time.Month, d int) bool {
	ty, tm, td := t.Date()
	return ty == y && tm == m && td == d
}

// StartOfDay truncates t to local midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return Midnight(y, m, d, loc)
}

// ClampDay caps day at the last day of the given month.
func ClampDay(year int, month time.Month, day int) int {
	return min(day, DaysInMonth(year, month))
}

// ShiftMonth moves a (year, month) pair by n calendar months.
func ShiftMonth(year int, month time.Month, n int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + n
	y := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}

// AddMonthsClamped adds n calendar months to t in loc, keeping the wall clock
// and clamping the day to the target month instead of overflowing into the
// month after it. Jan 31 + 1 month is Feb 28 (or 29).
func AddMonthsClamped(t time.Time, n int, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m := ShiftMonth(local.Year(), local.Month(), n)
	d := ClampDay(y, m, local.Day())
	return time.Date(y, m, d, local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
}

// ValidMonthDay reports whether month/day pass the literal token range check.
func ValidMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// DateOf builds local midnight for a literal year/month/day, rejecting days
// that do not exist in that month.
func DateOf(year, month, day int, loc *time.Location) (time.Time, bool) {
	if !ValidMonthDay(month, day) || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, false
	}
	return Midnight(year, time.Month(month), day, loc), true
}

// ParseAbsoluteDate accepts MM/DD (current year in loc, relative to now),
// YYYY-MM-DD, or a full RFC 3339 timestamp. Date-only inputs resolve to local
// midnight; timestamps are returned unchanged. ok is false for anything that
// does not name a real date, so callers can leave the token in place.
func ParseAbsoluteDate(text string, loc *time.Location, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return DateOf(now.In(loc).Year(), month, day, loc)
	}

	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return DateOf(year, month, day, loc)
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, text)
		} else {
			t, err = time.ParseInLocation(layout, text, loc)
		}
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatISO renders t in UTC with millisecond precision, e.g.
// 2025-09-24T15:00:00.000Z.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}
