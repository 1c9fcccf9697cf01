package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paymonth/internal/calendar"
	"paymonth/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist for the requesting user.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db       *sql.DB
	queries  *Queries
	now      func() time.Time
	defaults core.UserSettings
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", withPragmas(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:       db,
		queries:  New(db),
		now:      time.Now,
		defaults: core.DefaultUserSettings(""),
	}, nil
}

func withPragmas(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) timestamp() string {
	return formatInstant(r.now())
}

// CreateTransaction stores tx, assigning an ID when it has none.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tags, err := encodeTags(tx.Tags)
	if err != nil {
		return core.Transaction{}, err
	}
	now := r.timestamp()

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:            tx.ID,
		UserID:        tx.UserID,
		Date:          formatInstant(tx.Date),
		Type:          string(tx.Type),
		Fixed:         tx.Fixed,
		Category:      tx.Category,
		Subcategory:   nullString(tx.Subcategory),
		Description:   tx.Description,
		Amount:        tx.Amount.String(),
		PaymentMethod: nullString(tx.PaymentMethod),
		Tags:          tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"type", row.Type,
		"amount", row.Amount)

	return row.toCore()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return row.toCore()
}

// UpdateTransaction overwrites every mutable field of the stored row and
// bumps its version.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tags, err := encodeTags(tx.Tags)
	if err != nil {
		return core.Transaction{}, err
	}

	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Date:          formatInstant(tx.Date),
		Type:          string(tx.Type),
		Fixed:         tx.Fixed,
		Category:      tx.Category,
		Subcategory:   nullString(tx.Subcategory),
		Description:   tx.Description,
		Amount:        tx.Amount.String(),
		PaymentMethod: nullString(tx.PaymentMethod),
		Tags:          tags,
		UpdatedAt:     r.timestamp(),
		UserID:        tx.UserID,
		ID:            tx.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// SumPeriod aggregates the user's transactions dated inside [start, end].
// Amounts are summed as decimals, never as SQLite floats.
func (r *SQLiteRepository) SumPeriod(ctx context.Context, userID string, start, end time.Time) (core.PeriodSummary, error) {
	rows, err := r.queries.GetPeriodAmounts(ctx, userID, formatInstant(start), formatInstant(end))
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("get period amounts: %w", err)
	}

	var income, expense, saving, fixed decimal.Decimal
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return core.PeriodSummary{}, fmt.Errorf("parse stored amount %q: %w", row.Amount, err)
		}
		switch {
		case row.Type == string(core.Income):
			income = income.Add(amount)
		case row.Category == core.SavingCategory:
			saving = saving.Add(amount)
		default:
			expense = expense.Add(amount)
			if row.Fixed {
				fixed = fixed.Add(amount)
			}
		}
	}

	return core.NewPeriodSummary(income, expense, saving, fixed), nil
}

// SetSettingsDefaults changes what GetUserSettings reports for users that
// never saved settings. Call it before serving requests.
func (r *SQLiteRepository) SetSettingsDefaults(salaryDay int, locale string) error {
	d := r.defaults
	d.SalaryDay = salaryDay
	d.Locale = locale
	if err := d.Validate(); err != nil {
		return err
	}
	r.defaults = d
	return nil
}

// GetUserSettings returns the stored settings or the defaults for users that
// never saved any.
func (r *SQLiteRepository) GetUserSettings(ctx context.Context, userID string) (core.UserSettings, error) {
	row, err := r.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		d := r.defaults
		d.UserID = userID
		return d, nil
	}
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("get user: %w", err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) UpsertUserSettings(ctx context.Context, s core.UserSettings) (core.UserSettings, error) {
	row, err := r.queries.UpsertUser(ctx, UpsertUserParams{
		ID:        s.UserID,
		Name:      s.Name,
		SalaryDay: int64(s.SalaryDay),
		Currency:  s.Currency,
		Locale:    s.Locale,
		Now:       r.timestamp(),
	})
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("upsert user: %w", err)
	}

	slog.InfoContext(ctx, "User settings saved",
		"user_id", row.ID,
		"salary_day", row.SalaryDay,
		"locale", row.Locale)

	return row.toCore(), nil
}

func (row TransactionRow) toCore() (core.Transaction, error) {
	date, err := parseInstant(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	createdAt, err := parseInstant(row.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	updatedAt, err := parseInstant(row.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", row.Amount, err)
	}
	tags := []string{}
	if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
		return core.Transaction{}, fmt.Errorf("decode tags: %w", err)
	}

	return core.Transaction{
		ID:            row.ID,
		UserID:        row.UserID,
		Date:          date,
		Type:          core.TransactionType(row.Type),
		Fixed:         row.Fixed,
		Category:      row.Category,
		Subcategory:   stringPtr(row.Subcategory),
		Description:   row.Description,
		Amount:        amount,
		PaymentMethod: stringPtr(row.PaymentMethod),
		Tags:          tags,
		Version:       row.Version,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func (row UserRow) toCore() core.UserSettings {
	return core.UserSettings{
		UserID:    row.ID,
		Name:      row.Name,
		SalaryDay: int(row.SalaryDay),
		Currency:  row.Currency,
		Locale:    row.Locale,
	}
}

func formatInstant(t time.Time) string {
	return calendar.FormatISO(t)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(calendar.ISOMillis, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored instant %q: %w", s, err)
	}
	return t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
