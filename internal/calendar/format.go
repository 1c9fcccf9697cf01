package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var currencySymbols = map[string]string{
	"KRW": "₩",
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
	"GBP": "£",
	"CNY": "CN¥",
}

// Lang reduces a locale tag such as "en-US" to its lowercase language.
func Lang(locale string) string {
	lang, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(locale)), "-")
	lang, _, _ = strings.Cut(lang, "_")
	return lang
}

// IsKorean reports whether the locale is any Korean variant, the default.
func IsKorean(locale string) bool {
	l := Lang(locale)
	return l == "" || l == "ko"
}

func printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Korean
	}
	return message.NewPrinter(tag)
}

// FractionDigits is 0 for KRW and 2 for every other currency.
func FractionDigits(code string) int {
	if strings.EqualFold(code, "KRW") {
		return 0
	}
	return 2
}

// FormatCurrency renders amount with the currency symbol and the locale's
// grouping, e.g. ₩1,000,000 or $1,234.56. Unknown but well-formed ISO codes
// are prefixed with the code itself.
func FormatCurrency(amount decimal.Decimal, code, locale string) string {
	code = strings.ToUpper(code)
	if code == "" {
		code = "KRW"
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		if unit, err := currency.ParseISO(code); err == nil {
			symbol = unit.String() + " "
		} else {
			symbol = code + " "
		}
	}

	digits := FractionDigits(code)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	v := amount.Round(int32(digits)).InexactFloat64()
	body := printer(locale).Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
	return sign + symbol + body
}

// FormatNumber groups thousands per locale and keeps up to three fraction
// digits.
func FormatNumber(amount decimal.Decimal, locale string) string {
	return printer(locale).Sprintf("%v", number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(3)))
}

// ParseLocaleNumber parses text written with the locale's separators. ko and
// en use comma grouping; de and es use dot grouping with a decimal comma.
func ParseLocaleNumber(text, locale string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	switch Lang(locale) {
	case "de", "es":
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number string %q: %w", text, err)
	}
	return d, nil
}

// FormatPercent renders a signed percentage such as +15.2% or -5.2%. When
// isRatio is true value is a fraction (0.152).
func FormatPercent(value decimal.Decimal, isRatio bool, locale string, decimals int) string {
	if isRatio {
		value = value.Mul(decimal.NewFromInt(100))
	}
	value = value.Round(int32(decimals))
	sign := ""
	switch value.Sign() {
	case 1:
		sign = "+"
	case -1:
		sign = "-"
	}
	body := printer(locale).Sprintf("%v", number.Decimal(value.Abs().InexactFloat64(),
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
	return sign + body + "%"
}

// FormatDate renders a medium-length local date: "2025년 10월 15일" or
// "Oct 15, 2025".
func FormatDate(t time.Time, locale string, loc *time.Location) string {
	t = t.In(loc)
	if IsKorean(locale) {
		return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
	}
	return t.Format("Jan 2, 2006")
}

// FormatRelativeTime describes t relative to now in whole local days. Within
// a week it uses words ("어제", "3 days ago"); further out it falls back to
// FormatDate.
func FormatRelativeTime(t, now time.Time, locale string, loc *time.Location) string {
	diff := DaysBetween(t, now, loc)
	ko := IsKorean(locale)

	switch {
	case diff == 0:
		return pick(ko, "오늘", "Today")
	case diff == 1:
		return pick(ko, "어제", "Yesterday")
	case diff == -1:
		return pick(ko, "내일", "Tomorrow")
	case diff > 1 && diff < 7:
		return pick(ko, fmt.Sprintf("%d일 전", diff), fmt.Sprintf("%d days ago", diff))
	case diff < -1 && diff > -7:
		return pick(ko, fmt.Sprintf("%d일 후", -diff), fmt.Sprintf("in %d days", -diff))
	default:
		return FormatDate(t, locale, loc)
	}
}

// DaysBetween counts local calendar days from t to now; positive when t is in
// the past.
func DaysBetween(t, now time.Time, loc *time.Location) int {
	a := StartOfDay(t, loc)
	b := StartOfDay(now, loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

func pick(ko bool, k, e string) string {
	if ko {
		return k
	}
	return e
}
