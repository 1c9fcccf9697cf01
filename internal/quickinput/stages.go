package quickinput

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

// Each stage takes the residual text of the previous one and returns what it
// recognized plus the text left over. Stages never fail; an unrecognized
// token simply stays in the residual.

var (
	hashtagPattern    = regexp.MustCompile(`#[\w가-힣]+`)
	monthDayPattern   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
	isoDatePattern    = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	koRelativePattern = regexp.MustCompile(`(오늘|어제|내일|모레)`)
	enRelativePattern = regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow)\b`)
	koUnitAmount      = regexp.MustCompile(`([\d,]+)\s*(만|천)\s*원`)
	koPlainAmount     = regexp.MustCompile(`([\d,]+)\s*원`)
	enAmount          = regexp.MustCompile(`(?:\$|USD|usd)?\s*((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?)\s*(?:USD|usd)?\b`)

	unitMultipliers = map[string]decimal.Decimal{
		"만": decimal.NewFromInt(10000),
		"천": decimal.NewFromInt(1000),
	}

	paymentPatterns = compilePaymentPatterns()
)

// cut removes s[start:end], keeping the neighbours apart, and trims the result.
func cut(s string, start, end int) string {
	return strings.TrimSpace(s[:start] + " " + s[end:])
}

// extractHashtags collects every #tag in order of appearance and strips them.
func extractHashtags(in string) ([]string, string) {
	tags := []string{}
	for _, m := range hashtagPattern.FindAllString(in, -1) {
		tags = append(tags, m[1:])
	}
	return tags, strings.TrimSpace(hashtagPattern.ReplaceAllString(in, " "))
}

// resolveTypeAndFixed scans tags with last-match-wins semantics. Fallbacks
// seed the result; a resolved fixed flag without a type implies expense.
func resolveTypeAndFixed(tags []string, kw typeKeywords, fallbackType *core.TransactionType, fallbackFixed *bool) (*core.TransactionType, *bool) {
	var (
		txType *core.TransactionType
		fixed  *bool
	)
	if fallbackType != nil {
		v := *fallbackType
		txType = &v
	}
	if fallbackFixed != nil {
		v := *fallbackFixed
		fixed = &v
	}

	for _, tag := range tags {
		lower := strings.ToLower(tag)

		switch {
		case containsAny(lower, kw.income):
			txType = ptr(core.Income)
		case containsAny(lower, kw.expense):
			txType = ptr(core.Expense)
		}

		switch {
		case containsAny(lower, kw.fixed):
			fixed = ptr(true)
		case containsAny(lower, kw.variable):
			fixed = ptr(false)
		}
	}

	if fixed != nil && txType == nil {
		txType = ptr(core.Expense)
	}
	return txType, fixed
}

// extractDate tries MM/DD, then YYYY-MM-DD, then relative day keywords. Only
// the first candidate of each grammar is considered.
func extractDate(in string, table localeKeywords, lang string, loc *time.Location, now time.Time) (*time.Time, string) {
	if idx := monthDayPattern.FindStringSubmatchIndex(in); idx != nil {
		month, _ := strconv.Atoi(in[idx[2]:idx[3]])
		day, _ := strconv.Atoi(in[idx[4]:idx[5]])
		if d, ok := calendar.DateOf(now.In(loc).Year(), month, day, loc); ok {
			return &d, cut(in, idx[0], idx[1])
		}
	}

	if idx := isoDatePattern.FindStringSubmatchIndex(in); idx != nil {
		year, _ := strconv.Atoi(in[idx[2]:idx[3]])
		month, _ := strconv.Atoi(in[idx[4]:idx[5]])
		day, _ := strconv.Atoi(in[idx[6]:idx[7]])
		if d, ok := calendar.DateOf(year, month, day, loc); ok {
			return &d, cut(in, idx[0], idx[1])
		}
	}

	pattern := koRelativePattern
	if lang == langEnglish {
		pattern = enRelativePattern
	}
	if idx := pattern.FindStringSubmatchIndex(in); idx != nil {
		offset, ok := table.relative[strings.ToLower(in[idx[2]:idx[3]])]
		if ok {
			today := calendar.StartOfDay(now, loc).In(loc)
			d := calendar.Midnight(today.Year(), today.Month(), today.Day()+offset, loc)
			return &d, cut(in, idx[0], idx[1])
		}
	}

	return nil, in
}

// extractAmount applies the locale's amount grammar. Amounts preceded by '-'
// are refunds and are never extracted.
func extractAmount(in string, lang string) (*decimal.Decimal, string) {
	if lang == langEnglish {
		if idx := enAmount.FindStringSubmatchIndex(in); idx != nil && !negated(in, idx[0]) {
			if amount, ok := positiveNumber(in[idx[2]:idx[3]], lang); ok {
				return &amount, cut(in, idx[0], idx[1])
			}
		}
		return nil, in
	}

	if idx := koUnitAmount.FindStringSubmatchIndex(in); idx != nil && !negated(in, idx[0]) {
		if base, ok := positiveNumber(in[idx[2]:idx[3]], lang); ok {
			amount := base.Mul(unitMultipliers[in[idx[4]:idx[5]]])
			return &amount, cut(in, idx[0], idx[1])
		}
	}

	if idx := koPlainAmount.FindStringSubmatchIndex(in); idx != nil {
		if negated(in, idx[0]) {
			return nil, in
		}
		if amount, ok := positiveNumber(in[idx[2]:idx[3]], lang); ok {
			return &amount, cut(in, idx[0], idx[1])
		}
	}

	return nil, in
}

func negated(in string, start int) bool {
	return strings.HasSuffix(in[:start], "-")
}

func positiveNumber(s, lang string) (decimal.Decimal, bool) {
	d, err := calendar.ParseLocaleNumber(s, lang)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

type paymentPattern struct {
	method core.PaymentMethod
	re     *regexp.Regexp
}

// compilePaymentPatterns turns the keyword tables into regexps. Hangul terms
// match anywhere since \b does not apply to them; Latin terms are
// word-bounded and case-insensitive.
func compilePaymentPatterns() map[string][]paymentPattern {
	out := make(map[string][]paymentPattern, len(keywordTables))
	for lang, table := range keywordTables {
		var patterns []paymentPattern
		for _, group := range table.payments {
			for _, term := range group.terms {
				expr := `(?i)\b` + regexp.QuoteMeta(term) + `\b`
				if hasHangul(term) {
					expr = regexp.QuoteMeta(term)
				}
				patterns = append(patterns, paymentPattern{method: group.method, re: regexp.MustCompile(expr)})
			}
		}
		out[lang] = patterns
	}
	return out
}

// extractPaymentMethod returns the first method whose term appears, in table
// order card, cash, transfer.
func extractPaymentMethod(in string, lang string) (*core.PaymentMethod, string) {
	for _, p := range paymentPatterns[lang] {
		if idx := p.re.FindStringIndex(in); idx != nil {
			method := p.method
			return &method, cut(in, idx[0], idx[1])
		}
	}
	return nil, in
}

// resolveCategory looks only at tags; the residual passes through untouched.
func resolveCategory(tags []string, categories []string, in string) (*string, string) {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, keyword := range categories {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				category := keyword
				return &category, in
			}
		}
	}
	return nil, in
}

// describe normalizes whatever text no stage claimed.
func describe(in string) string {
	return strings.Join(strings.Fields(in), " ")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
