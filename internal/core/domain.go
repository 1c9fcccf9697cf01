package core

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	PaymentCard     PaymentMethod = "card"
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

const (
	DefaultSalaryDay = 25
	DefaultCurrency  = "KRW"
	DefaultLocale    = "ko-KR"

	// SavingCategory marks expense rows that are counted as savings in summaries.
	SavingCategory = "저축"

	MaxCategoryLen      = 50
	MaxDescriptionLen   = 200
	MaxTagLen           = 30
	MaxPaymentMethodLen = 20
	MaxNameLen          = 100
)

type (
	TransactionType string

	PaymentMethod string

	Transaction struct {
		ID            string
		UserID        string
		Date          time.Time
		Type          TransactionType
		Fixed         bool
		Category      string
		Subcategory   *string
		Description   string
		Amount        decimal.Decimal
		PaymentMethod *string
		Tags          []string
		Version       int64 // bumped on every update
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	UserSettings struct {
		UserID    string
		Name      string
		SalaryDay int
		Currency  string
		Locale    string
	}
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidSalaryDay   = errors.New("salaryDay must be between 1 and 31")
	ErrInvalidCurrency    = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrInvalidLocale      = errors.New("locale must look like ko-KR")
	ErrInvalidDescription = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLen)
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	localePattern   = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)
)

// ValidationErrors maps a field name to the reason it was rejected.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match ValidationErrors against ErrInvalidArgument.
func (v ValidationErrors) Unwrap() error {
	return ErrInvalidArgument
}

func (v ValidationErrors) add(field string, err error) {
	if _, exists := v[field]; !exists {
		v[field] = err.Error()
	}
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (t Transaction) Validate() error {
	errs := ValidationErrors{}

	if t.Date.IsZero() {
		errs.add("date", errors.New("date cannot be zero"))
	}
	if !t.Type.Valid() {
		errs.add("type", ErrInvalidType)
	}
	if err := ValidateAmount(t.Amount); err != nil {
		errs.add("amount", err)
	}

	category := strings.TrimSpace(t.Category)
	if category == "" {
		errs.add("category", ErrEmptyCategory)
	} else if utf8.RuneCountInString(category) > MaxCategoryLen {
		errs.add("category", fmt.Errorf("category too long (max %d characters)", MaxCategoryLen))
	}
	if t.Subcategory != nil && utf8.RuneCountInString(*t.Subcategory) > MaxCategoryLen {
		errs.add("subcategory", fmt.Errorf("subcategory too long (max %d characters)", MaxCategoryLen))
	}

	if len(strings.TrimSpace(t.Description)) == 0 {
		errs.add("description", ErrEmptyDescription)
	} else if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		errs.add("description", ErrInvalidDescription)
	}

	if t.PaymentMethod != nil && utf8.RuneCountInString(*t.PaymentMethod) > MaxPaymentMethodLen {
		errs.add("paymentMethod", fmt.Errorf("payment method too long (max %d characters)", MaxPaymentMethodLen))
	}
	for _, tag := range t.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLen {
			errs.add("tags", fmt.Errorf("tag %q too long (max %d characters)", tag, MaxTagLen))
		}
	}

	return errs.orNil()
}

// ValidateAmount accepts only strictly positive amounts.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func ValidateSalaryDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidSalaryDay
	}
	return nil
}

func ValidateLocale(locale string) error {
	if !localePattern.MatchString(locale) {
		return ErrInvalidLocale
	}
	return nil
}

// DefaultUserSettings returns the settings used for users that never saved any.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:    userID,
		SalaryDay: DefaultSalaryDay,
		Currency:  DefaultCurrency,
		Locale:    DefaultLocale,
	}
}

func (s UserSettings) Validate() error {
	errs := ValidationErrors{}
	if err := ValidateSalaryDay(s.SalaryDay); err != nil {
		errs.add("salaryDay", err)
	}
	if !currencyPattern.MatchString(s.Currency) {
		errs.add("currency", ErrInvalidCurrency)
	}
	if err := ValidateLocale(s.Locale); err != nil {
		errs.add("locale", err)
	}
	if n := utf8.RuneCountInString(s.Name); n > MaxNameLen {
		errs.add("name", fmt.Errorf("name too long (max %d characters)", MaxNameLen))
	}
	return errs.orNil()
}

// Language returns the two-letter language of the settings locale.
func (s UserSettings) Language() string {
	lang, _, _ := strings.Cut(s.Locale, "-")
	return lang
}

// DedupeTags keeps the first occurrence of every tag, preserving order.
func DedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
