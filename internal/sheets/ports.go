// Package sheets defines the spreadsheet export port. Adapters live in the
// google and memory subpackages.
package sheets

import (
	"context"
	"strings"
	"time"

	"paymonth/internal/core"
	"paymonth/internal/payperiod"
)

// RowExporter mirrors transactions into a spreadsheet keyed by transaction ID.
type RowExporter interface {
	// UpsertRow writes r, replacing any existing row with the same ID.
	UpsertRow(ctx context.Context, r Row) error
	// DeleteRow removes the row for id. Deleting a missing row is not an error.
	DeleteRow(ctx context.Context, id string) error
}

// Header is the first row of the export sheet, in column order.
var Header = []string{"ID", "Period", "Date", "Type", "Fixed", "Category", "Description", "Amount", "Payment", "Tags"}

// Row is one exported transaction, already rendered to cell text.
type Row struct {
	ID            string
	Period        string
	Date          string
	Type          string
	Fixed         bool
	Category      string
	Description   string
	Amount        string
	PaymentMethod string
	Tags          string
}

// NewRow renders tx for export. The date is the local calendar day in loc and
// Period is the label of the pay period tx falls in.
func NewRow(tx core.Transaction, period payperiod.Period, loc *time.Location) Row {
	r := Row{
		ID:          tx.ID,
		Period:      period.Label,
		Date:        tx.Date.In(loc).Format(time.DateOnly),
		Type:        string(tx.Type),
		Fixed:       tx.Fixed,
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      tx.Amount.String(),
		Tags:        strings.Join(tx.Tags, " "),
	}
	if tx.PaymentMethod != nil {
		r.PaymentMethod = *tx.PaymentMethod
	}
	return r
}

// Values returns the row cells in Header order.
func (r Row) Values() []any {
	return []any{r.ID, r.Period, r.Date, r.Type, r.Fixed, r.Category, r.Description, r.Amount, r.PaymentMethod, r.Tags}
}
