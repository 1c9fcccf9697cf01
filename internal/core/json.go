package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paymonth/internal/calendar"
)

type transactionJSON struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Date          string          `json:"date"`
	Type          TransactionType `json:"type"`
	Fixed         bool            `json:"fixed"`
	Category      string          `json:"category"`
	Subcategory   *string         `json:"subcategory"`
	Description   string          `json:"description"`
	Amount        json.Number     `json:"amount"`
	PaymentMethod *string         `json:"paymentMethod"`
	Tags          []string        `json:"tags"`
	Version       int64           `json:"version"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// MarshalJSON renders instants as ISO-8601 UTC with milliseconds and the
// amount as a JSON number.
func (t Transaction) MarshalJSON() ([]byte, error) {
	out := transactionJSON{
		ID:            t.ID,
		UserID:        t.UserID,
		Date:          calendar.FormatISO(t.Date),
		Type:          t.Type,
		Fixed:         t.Fixed,
		Category:      t.Category,
		Subcategory:   t.Subcategory,
		Description:   t.Description,
		Amount:        json.Number(t.Amount.String()),
		PaymentMethod: t.PaymentMethod,
		Tags:          t.Tags,
		Version:       t.Version,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = calendar.FormatISO(t.CreatedAt)
	}
	if !t.UpdatedAt.IsZero() {
		out.UpdatedAt = calendar.FormatISO(t.UpdatedAt)
	}
	return json.Marshal(out)
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var in transactionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(in.Amount.String())
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	date, err := parseJSONTime(in.Date)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	createdAt, err := parseJSONTime(in.CreatedAt)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	updatedAt, err := parseJSONTime(in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}

	*t = Transaction{
		ID:            in.ID,
		UserID:        in.UserID,
		Date:          date,
		Type:          in.Type,
		Fixed:         in.Fixed,
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		Description:   in.Description,
		Amount:        amount,
		PaymentMethod: in.PaymentMethod,
		Tags:          in.Tags,
		Version:       in.Version,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	return nil
}

func parseJSONTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

type summaryJSON struct {
	Income          json.Number `json:"income"`
	Expense         json.Number `json:"expense"`
	Saving          json.Number `json:"saving"`
	Balance         json.Number `json:"balance"`
	FixedExpense    json.Number `json:"fixedExpense"`
	VariableExpense json.Number `json:"variableExpense"`
}

func (s PeriodSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		Income:          number(s.Income),
		Expense:         number(s.Expense),
		Saving:          number(s.Saving),
		Balance:         number(s.Balance),
		FixedExpense:    number(s.FixedExpense),
		VariableExpense: number(s.VariableExpense),
	})
}

type changeJSON struct {
	Income          *json.Number `json:"income"`
	Expense         *json.Number `json:"expense"`
	Saving          *json.Number `json:"saving"`
	Balance         *json.Number `json:"balance"`
	FixedExpense    *json.Number `json:"fixedExpense"`
	VariableExpense *json.Number `json:"variableExpense"`
}

// MarshalJSON emits null for fields whose previous value was zero.
func (c PeriodChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(changeJSON{
		Income:          optionalNumber(c.Income),
		Expense:         optionalNumber(c.Expense),
		Saving:          optionalNumber(c.Saving),
		Balance:         optionalNumber(c.Balance),
		FixedExpense:    optionalNumber(c.FixedExpense),
		VariableExpense: optionalNumber(c.VariableExpense),
	})
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func optionalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := number(*d)
	return &n
}
