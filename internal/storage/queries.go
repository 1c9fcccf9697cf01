package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionColumns = `id, user_id, date, type, fixed, category, subcategory, description,
       amount, payment_method, tags, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (TransactionRow, error) {
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Date,
		&i.Type,
		&i.Fixed,
		&i.Category,
		&i.Subcategory,
		&i.Description,
		&i.Amount,
		&i.PaymentMethod,
		&i.Tags,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    id, user_id, date, type, fixed, category, subcategory, description,
    amount, payment_method, tags, version, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
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
	CreatedAt     string
	UpdatedAt     string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.Date,
		arg.Type,
		arg.Fixed,
		arg.Category,
		arg.Subcategory,
		arg.Description,
		arg.Amount,
		arg.PaymentMethod,
		arg.Tags,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanTransaction(row)
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ? AND id = ?`

func (q *Queries) GetTransaction(ctx context.Context, userID, id string) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, userID, id)
	return scanTransaction(row)
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions
SET date = ?, type = ?, fixed = ?, category = ?, subcategory = ?, description = ?,
    amount = ?, payment_method = ?, tags = ?, version = version + 1, updated_at = ?
WHERE user_id = ? AND id = ?
RETURNING ` + transactionColumns

type UpdateTransactionParams struct {
	Date          string
	Type          string
	Fixed         bool
	Category      string
	Subcategory   sql.NullString
	Description   string
	Amount        string
	PaymentMethod sql.NullString
	Tags          string
	UpdatedAt     string
	UserID        string
	ID            string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Date,
		arg.Type,
		arg.Fixed,
		arg.Category,
		arg.Subcategory,
		arg.Description,
		arg.Amount,
		arg.PaymentMethod,
		arg.Tags,
		arg.UpdatedAt,
		arg.UserID,
		arg.ID,
	)
	return scanTransaction(row)
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions
WHERE user_id = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, userID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPeriodAmounts = `-- name: GetPeriodAmounts :many
SELECT type, fixed, category, amount
FROM transactions
WHERE user_id = ? AND date >= ? AND date <= ?`

func (q *Queries) GetPeriodAmounts(ctx context.Context, userID, start, end string) ([]PeriodAmountRow, error) {
	rows, err := q.db.QueryContext(ctx, getPeriodAmounts, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PeriodAmountRow
	for rows.Next() {
		var i PeriodAmountRow
		if err := rows.Scan(&i.Type, &i.Fixed, &i.Category, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUser = `-- name: GetUser :one
SELECT id, name, salary_day, currency, locale, created_at, updated_at
FROM users
WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (UserRow, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i UserRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.SalaryDay,
		&i.Currency,
		&i.Locale,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (id, name, salary_day, currency, locale, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    salary_day = excluded.salary_day,
    currency = excluded.currency,
    locale = excluded.locale,
    updated_at = excluded.updated_at
RETURNING id, name, salary_day, currency, locale, created_at, updated_at`

type UpsertUserParams struct {
	ID        string
	Name      string
	SalaryDay int64
	Currency  string
	Locale    string
	Now       string
}

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (UserRow, error) {
	row := q.db.QueryRowContext(ctx, upsertUser,
		arg.ID,
		arg.Name,
		arg.SalaryDay,
		arg.Currency,
		arg.Locale,
		arg.Now,
		arg.Now,
	)
	var i UserRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.SalaryDay,
		&i.Currency,
		&i.Locale,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
