package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paymonth/internal/core"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// sortColumns maps the public sort fields to SQL expressions. Amounts are
// stored as text, so ordering casts them.
var sortColumns = map[string]string{
	"date":      "date",
	"amount":    "CAST(amount AS REAL)",
	"createdAt": "created_at",
}

type Sort struct {
	Field string
	Desc  bool
}

var DefaultSort = Sort{Field: "date", Desc: true}

// ParseSort reads "field:dir" where field is date, amount or createdAt and
// dir is asc or desc. The empty string yields DefaultSort.
func ParseSort(s string) (Sort, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultSort, nil
	}
	field, dir, _ := strings.Cut(s, ":")
	if _, ok := sortColumns[field]; !ok {
		return Sort{}, core.ValidationErrors{"sort": fmt.Sprintf("unknown sort field %q", field)}
	}
	switch strings.ToLower(dir) {
	case "", "desc":
		return Sort{Field: field, Desc: true}, nil
	case "asc":
		return Sort{Field: field}, nil
	default:
		return Sort{}, core.ValidationErrors{"sort": fmt.Sprintf("unknown sort direction %q", dir)}
	}
}

func (s Sort) String() string {
	if s.Desc {
		return s.Field + ":desc"
	}
	return s.Field + ":asc"
}

type TransactionFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Type      *core.TransactionType
	Category  string
	Fixed     *bool
	Query     string // matches description or category
	Page      int
	PageSize  int
	Sort      Sort
}

type TransactionPage struct {
	Items    []core.Transaction
	Total    int
	Page     int
	PageSize int
}

func (p TransactionPage) TotalPages() int {
	if p.PageSize == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (f TransactionFilter) normalize() TransactionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if _, ok := sortColumns[f.Sort.Field]; !ok {
		f.Sort = DefaultSort
	}
	return f
}

func (f TransactionFilter) where() (string, []interface{}) {
	clauses := []string{"user_id = ?"}
	args := []interface{}{f.UserID}

	if f.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatInstant(*f.StartDate))
	}
	if f.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatInstant(*f.EndDate))
	}
	if f.Type != nil {
		clauses = append(clauses, "type = ?")
		args = append(args, string(*f.Type))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Fixed != nil {
		clauses = append(clauses, "fixed = ?")
		args = append(args, *f.Fixed)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		clauses = append(clauses, `(description LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListTransactions returns one page of the user's transactions plus the total
// number of rows matching the filter.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) (TransactionPage, error) {
	f = f.normalize()
	where, args := f.where()

	var total int
	countQuery := "SELECT COUNT(*) FROM transactions WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}

	dir := "ASC"
	if f.Sort.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY %s %s, id %s LIMIT ? OFFSET ?",
		transactionColumns, where, sortColumns[f.Sort.Field], dir, dir)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	items := []core.Transaction{}
	for rows.Next() {
		row, err := scanTransaction(rows)
		if err != nil {
			return TransactionPage{}, fmt.Errorf("scan transaction: %w", err)
		}
		tx, err := row.toCore()
		if err != nil {
			return TransactionPage{}, err
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return TransactionPage{}, fmt.Errorf("iterate transactions: %w", err)
	}

	return TransactionPage{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}
