package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"paymonth/internal/amqp"
	"paymonth/internal/core"
	"paymonth/internal/payperiod"
	"paymonth/internal/sheets"
	"paymonth/internal/storage"
)

// TransactionSource is the read side of the transaction store.
type TransactionSource interface {
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter) (storage.TransactionPage, error)
}

type SettingsSource interface {
	GetUserSettings(ctx context.Context, userID string) (core.UserSettings, error)
}

// SyncWorker mirrors transaction events into a spreadsheet.
type SyncWorker struct {
	exporter     sheets.RowExporter
	transactions TransactionSource
	settings     SettingsSource
	loc          *time.Location
}

// NewSyncWorker builds a worker. transactions and settings may be nil, in
// which case event bodies and default settings are used.
func NewSyncWorker(exporter sheets.RowExporter, transactions TransactionSource, settings SettingsSource, loc *time.Location) *SyncWorker {
	if loc == nil {
		loc = payperiod.Default().Location
	}
	return &SyncWorker{
		exporter:     exporter,
		transactions: transactions,
		settings:     settings,
		loc:          loc,
	}
}

// Handle applies one transaction event. It is the amqp.EventHandler of the
// worker binary.
func (w *SyncWorker) Handle(ctx context.Context, evt *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"action", evt.Action,
		"id", evt.ID,
		"version", evt.Version)

	switch evt.Action {
	case amqp.ActionDeleted:
		if err := w.exporter.DeleteRow(ctx, evt.ID); err != nil {
			return fmt.Errorf("delete row %s: %w", evt.ID, err)
		}
		return nil

	case amqp.ActionCreated, amqp.ActionUpdated:
		tx, ok, err := w.resolve(ctx, evt)
		if err != nil {
			return err
		}
		if !ok {
			slog.WarnContext(ctx, "Transaction vanished before sync, skipping", "id", evt.ID)
			return nil
		}
		return w.export(ctx, tx)

	default:
		return fmt.Errorf("unknown action %q", evt.Action)
	}
}

// resolve prefers the stored row so that a late event never overwrites a
// newer version with an older body.
func (w *SyncWorker) resolve(ctx context.Context, evt *amqp.TransactionEvent) (core.Transaction, bool, error) {
	if w.transactions == nil {
		if evt.Transaction == nil {
			return core.Transaction{}, false, fmt.Errorf("event %s carries no transaction", evt.ID)
		}
		return *evt.Transaction, true, nil
	}

	tx, err := w.transactions.GetTransaction(ctx, evt.UserID, evt.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("get transaction %s: %w", evt.ID, err)
	}
	return tx, true, nil
}

func (w *SyncWorker) calculatorFor(ctx context.Context, userID string) (payperiod.Calculator, int, error) {
	settings := core.DefaultUserSettings(userID)
	if w.settings != nil {
		s, err := w.settings.GetUserSettings(ctx, userID)
		if err != nil {
			return payperiod.Calculator{}, 0, fmt.Errorf("get settings for %s: %w", userID, err)
		}
		settings = s
	}
	return payperiod.Calculator{Location: w.loc, Locale: settings.Locale}, settings.SalaryDay, nil
}

func (w *SyncWorker) export(ctx context.Context, tx core.Transaction) error {
	calc, salaryDay, err := w.calculatorFor(ctx, tx.UserID)
	if err != nil {
		return err
	}
	period, err := calc.Get(tx.Date, salaryDay)
	if err != nil {
		return fmt.Errorf("pay period for %s: %w", tx.ID, err)
	}

	if err := w.exporter.UpsertRow(ctx, sheets.NewRow(tx, period, w.loc)); err != nil {
		return fmt.Errorf("upsert row %s: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", tx.ID,
		"version", tx.Version,
		"period", period.Label)
	return nil
}

// Backfill exports every stored transaction of userID. It recovers a sheet
// after missed events or worker downtime.
func (w *SyncWorker) Backfill(ctx context.Context, userID string) (int, error) {
	if w.transactions == nil {
		return 0, errors.New("backfill needs a transaction source")
	}

	synced := 0
	failed := 0
	for page := 1; ; page++ {
		res, err := w.transactions.ListTransactions(ctx, storage.TransactionFilter{
			UserID:   userID,
			Page:     page,
			PageSize: storage.MaxPageSize,
			Sort:     storage.Sort{Field: "date"},
		})
		if err != nil {
			return synced, fmt.Errorf("list transactions page %d: %w", page, err)
		}

		for _, tx := range res.Items {
			if err := ctx.Err(); err != nil {
				return synced, err
			}
			if err := w.export(ctx, tx); err != nil {
				slog.ErrorContext(ctx, "Failed to backfill transaction", "id", tx.ID, "error", err)
				failed++
				continue
			}
			synced++
		}

		if page >= res.TotalPages() {
			break
		}
	}

	slog.InfoContext(ctx, "Backfill completed",
		"user_id", userID,
		"synced", synced,
		"errors", failed)

	if failed > 0 {
		return synced, fmt.Errorf("backfill: %d transactions failed", failed)
	}
	return synced, nil
}
