package calendar

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = MustLoadLocation("Asia/Seoul")

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month), "%d-%02d", tt.year, tt.month)
	}
}

func TestShiftMonth(t *testing.T) {
	y, m := ShiftMonth(2025, time.January, -1)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.December, m)

	y, m = ShiftMonth(2025, time.October, 15)
	assert.Equal(t, 2027, y)
	assert.Equal(t, time.January, m)

	y, m = ShiftMonth(2025, time.March, -27)
	assert.Equal(t, 2022, y)
	assert.Equal(t, time.December, m)
}

func TestAddMonthsClamped(t *testing.T) {
	jan31 := time.Date(2025, 1, 31, 0, 0, 0, 0, seoul)

	got := AddMonthsClamped(jan31, 1, seoul)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, seoul), got)

	got = AddMonthsClamped(time.Date(2024, 1, 31, 0, 0, 0, 0, seoul), 1, seoul)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, seoul), got)

	got = AddMonthsClamped(time.Date(2025, 3, 31, 9, 30, 0, 0, seoul), -1, seoul)
	assert.Equal(t, time.Date(2025, 2, 28, 9, 30, 0, 0, seoul), got)
}

func TestStartOfDay(t *testing.T) {
	// 2025-10-24T15:00:00Z is midnight of the 25th in Seoul.
	in := time.Date(2025, 10, 24, 16, 30, 0, 0, time.UTC)
	got := StartOfDay(in, seoul)
	assert.Equal(t, "2025-10-24T15:00:00.000Z", FormatISO(got))
}

func TestMidnightAroundClockChanges(t *testing.T) {
	havana := MustLoadLocation("America/Havana")

	// 2012-04-01 had no 00:00 in Havana; the day began at 01:00.
	got := Midnight(2012, time.April, 1, havana)
	assert.True(t, got.Equal(time.Date(2012, 4, 1, 1, 0, 0, 0, havana)), "got %s", got)
	assert.True(t, StartOfDay(time.Date(2012, 4, 1, 12, 0, 0, 0, havana), havana).Equal(got))

	// On 2012-11-04 00:00 happened twice; the day began at the first one.
	days := []struct {
		y int
		m time.Month
		d int
	}{
		{2012, time.April, 1},
		{2012, time.November, 4},
		{2025, time.March, 9},
		{2025, time.October, 15},
	}
	for _, day := range days {
		got := Midnight(day.y, day.m, day.d, havana)
		y, m, d := got.In(havana).Date()
		assert.Equal(t, []int{day.y, int(day.m), day.d}, []int{y, int(m), d}, "day of %s", got)
		py, pm, pd := got.Add(-time.Nanosecond).In(havana).Date()
		assert.NotEqual(t, []int{day.y, int(day.m), day.d}, []int{py, int(pm), pd}, "instant before %s is the same day", got)
	}
}

func TestParseAbsoluteDate(t *testing.T) {
	now := time.Date(2025, 10, 16, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"month/day current year", "10/05", "2025-10-04T15:00:00.000Z", true},
		{"single digits", "1/5", "2025-01-04T15:00:00.000Z", true},
		{"iso date", "2024-02-29", "2024-02-28T15:00:00.000Z", true},
		{"timestamp kept as is", "2025-10-30T00:00:00Z", "2025-10-30T00:00:00.000Z", true},
		{"timestamp with offset", "2025-10-30T09:00:00+09:00", "2025-10-30T00:00:00.000Z", true},
		{"out of range", "99/99", "", false},
		{"month 13", "13/01", "", false},
		{"day zero", "10/00", "", false},
		{"nonexistent day", "2025-02-29", "", false},
		{"garbage", "tomorrow-ish", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAbsoluteDate(tt.in, seoul, now)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, FormatISO(got))
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₩1,000,000", FormatCurrency(decimal.NewFromInt(1000000), "KRW", "ko-KR"))
	assert.Equal(t, "$1,234.56", FormatCurrency(decimal.RequireFromString("1234.56"), "USD", "en-US"))
	assert.Equal(t, "$5.00", FormatCurrency(decimal.NewFromInt(5), "USD", "en-US"))
	assert.Equal(t, "-₩9,000", FormatCurrency(decimal.NewFromInt(-9000), "KRW", "ko-KR"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,000,000", FormatNumber(decimal.NewFromInt(1000000), "ko-KR"))
	assert.Equal(t, "1,234.56", FormatNumber(decimal.RequireFromString("1234.56"), "en-US"))
}

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		in, locale, want string
	}{
		{"1,000", "ko-KR", "1000"},
		{"1,234.56", "en-US", "1234.56"},
		{"1.234,56", "de-DE", "1234.56"},
		{"9000", "es-ES", "9000"},
	}
	for _, tt := range tests {
		got, err := ParseLocaleNumber(tt.in, tt.locale)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s -> %s", tt.in, got)
	}

	_, err := ParseLocaleNumber(",", "ko-KR")
	assert.Error(t, err)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+15.2%", FormatPercent(decimal.RequireFromString("0.1523"), true, "ko-KR", 1))
	assert.Equal(t, "-5.2%", FormatPercent(decimal.RequireFromString("-5.2"), false, "ko-KR", 1))
	assert.Equal(t, "0.0%", FormatPercent(decimal.Zero, false, "en-US", 1))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, seoul)
	day := func(d int) time.Time { return time.Date(2025, 10, d, 8, 0, 0, 0, seoul) }

	assert.Equal(t, "오늘", FormatRelativeTime(day(15), now, "ko-KR", seoul))
	assert.Equal(t, "어제", FormatRelativeTime(day(14), now, "ko-KR", seoul))
	assert.Equal(t, "내일", FormatRelativeTime(day(16), now, "ko-KR", seoul))
	assert.Equal(t, "5일 전", FormatRelativeTime(day(10), now, "ko-KR", seoul))
	assert.Equal(t, "3일 후", FormatRelativeTime(day(18), now, "ko-KR", seoul))
	assert.Equal(t, "5 days ago", FormatRelativeTime(day(10), now, "en-US", seoul))
	assert.Equal(t, "in 3 days", FormatRelativeTime(day(18), now, "en-US", seoul))
	assert.Equal(t, "2025년 10월 1일", FormatRelativeTime(day(1), now, "ko-KR", seoul))
	assert.Equal(t, "Oct 1, 2025", FormatRelativeTime(day(1), now, "en-US", seoul))
}

func TestLang(t *testing.T) {
	assert.Equal(t, "en", Lang("en-US"))
	assert.Equal(t, "ko", Lang("ko"))
	assert.True(t, IsKorean(""))
	assert.False(t, IsKorean("en"))
}
