// Package quickinput parses one line of Korean or English free text into a
// draft transaction.
//
// The parser is a fixed pipeline of stages:
//
//	hashtags -> type/fixed -> date -> amount -> payment method -> category -> description
//
// Every stage receives the residual text of the one before it, so a token
// consumed early (a date such as 10/05) is never re-read by a later grammar.
package quickinput

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

// ParsedInput is the structured result of a quick-entry line. Nil fields were
// not recognized.
type ParsedInput struct {
	Date          *time.Time
	Amount        *decimal.Decimal
	Type          *core.TransactionType
	Fixed         *bool
	Category      *string
	Subcategory   *string
	Description   string
	Tags          []string
	PaymentMethod *core.PaymentMethod
}

type parsedInputJSON struct {
	Date          *string               `json:"date"`
	Amount        *json.Number          `json:"amount"`
	Type          *core.TransactionType `json:"type"`
	Fixed         *bool                 `json:"fixed"`
	Category      *string               `json:"category"`
	Subcategory   *string               `json:"subcategory"`
	Description   string                `json:"description"`
	Tags          []string              `json:"tags"`
	PaymentMethod *core.PaymentMethod   `json:"paymentMethod"`
}

// MarshalJSON renders dates as ISO-8601 strings and amounts as JSON numbers.
func (p ParsedInput) MarshalJSON() ([]byte, error) {
	out := parsedInputJSON{
		Type:          p.Type,
		Fixed:         p.Fixed,
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Description:   p.Description,
		Tags:          p.Tags,
		PaymentMethod: p.PaymentMethod,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if p.Date != nil {
		s := calendar.FormatISO(*p.Date)
		out.Date = &s
	}
	if p.Amount != nil {
		n := json.Number(p.Amount.String())
		out.Amount = &n
	}
	return json.Marshal(out)
}

// Parser resolves relative dates against Now in Location. A Parser is safe
// for concurrent use.
type Parser struct {
	Location *time.Location
	Now      func() time.Time
}

// NewParser returns a parser for loc; nil means Asia/Seoul.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = calendar.MustLoadLocation(calendar.DefaultTimezone)
	}
	return &Parser{Location: loc, Now: time.Now}
}

var defaultParser = NewParser(nil)

// Parse runs the default Asia/Seoul parser.
func Parse(raw, locale string, fallbackType *core.TransactionType, fallbackFixed *bool) ParsedInput {
	return defaultParser.Parse(raw, locale, fallbackType, fallbackFixed)
}

func tableFor(locale string) localeKeywords {
	return keywordTables[langFor(locale)]
}

func langFor(locale string) string {
	if lang := calendar.Lang(locale); lang == langEnglish {
		return langEnglish
	}
	return langKorean
}

// Parse never fails: unrecognized tokens stay in Description.
func (p *Parser) Parse(raw, locale string, fallbackType *core.TransactionType, fallbackFixed *bool) ParsedInput {
	lang := langFor(locale)
	table := tableFor(lang)
	now := p.Now()

	tags, rest := extractHashtags(raw)
	txType, fixed := resolveTypeAndFixed(tags, table.types, fallbackType, fallbackFixed)
	date, rest := extractDate(rest, table, lang, p.Location, now)
	amount, rest := extractAmount(rest, lang)
	method, rest := extractPaymentMethod(rest, lang)
	category, rest := resolveCategory(tags, table.categories, rest)

	return ParsedInput{
		Date:          date,
		Amount:        amount,
		Type:          txType,
		Fixed:         fixed,
		Category:      category,
		Description:   describe(rest),
		Tags:          tags,
		PaymentMethod: method,
	}
}
