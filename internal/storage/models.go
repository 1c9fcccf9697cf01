package storage

import "database/sql"

// Rows as stored. Instants are fixed-width UTC text so that lexical order is
// chronological; amounts are decimal text.

type TransactionRow struct {
	ID            string
	UserID        string
	Date          string
	Type          string
	Fixed         bool
	Category      string
	Subcategory   sql.NullString
	Description   string
	Amount        string
	PaymentMethod sql.NullString
	Tags          string
	Version       int64
	CreatedAt     string
	UpdatedAt     string
}

type UserRow struct {
	ID        string
	Name      string
	SalaryDay int64
	Currency  string
	Locale    string
	CreatedAt string
	UpdatedAt string
}

type PeriodAmountRow struct {
	Type     string
	Fixed    bool
	Category string
	Amount   string
}
