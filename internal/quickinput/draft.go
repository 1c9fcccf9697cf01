package quickinput

import (
	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

// Submittable reports whether the parsed line carries a usable amount.
func (in ParsedInput) Submittable() bool {
	return in.Amount != nil && in.Amount.IsPositive()
}

// Draft maps a parsed line to a transaction ready for validation, filling the
// locale defaults for anything the line did not say. ok is false when there is
// no positive amount.
func (p *Parser) Draft(in ParsedInput, locale string) (tx core.Transaction, ok bool) {
	if !in.Submittable() {
		return core.Transaction{}, false
	}
	table := tableFor(locale)

	tx = core.Transaction{
		Date:        calendar.StartOfDay(p.Now(), p.Location),
		Type:        core.Expense,
		Category:    table.uncategorized,
		Subcategory: in.Subcategory,
		Description: in.Description,
		Amount:      *in.Amount,
		Tags:        core.DedupeTags(in.Tags),
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Fixed != nil {
		tx.Fixed = *in.Fixed
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	if tx.Description == "" {
		tx.Description = table.defaultDescription
	}
	if in.PaymentMethod != nil {
		method := in.PaymentMethod.String()
		tx.PaymentMethod = &method
	}
	return tx, true
}
