package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymonth/internal/amqp"
	"paymonth/internal/core"
	"paymonth/internal/sheets"
	"paymonth/internal/sheets/memory"
	"paymonth/internal/storage"
)

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func lunch(userID string) core.Transaction {
	return core.Transaction{
		UserID:      userID,
		Date:        time.Date(2025, 10, 4, 15, 0, 0, 0, time.UTC), // 2025-10-05 in Seoul
		Type:        core.Expense,
		Category:    "식비",
		Description: "점심",
		Amount:      decimal.NewFromInt(9000),
		Tags:        []string{"점심", "회사"},
	}
}

func TestHandle_CreatedUsesStoredRow(t *testing.T) {
	repo := newRepo(t)
	store := memory.New()
	w := NewSyncWorker(store, repo, repo, nil)
	ctx := context.Background()

	tx, err := repo.CreateTransaction(ctx, lunch("u1"))
	require.NoError(t, err)

	require.NoError(t, w.Handle(ctx, amqp.NewTransactionEvent(amqp.ActionCreated, tx)))

	row, ok := store.Get(tx.ID)
	require.True(t, ok)
	assert.Equal(t, "2025년 9월", row.Period)
	assert.Equal(t, "2025-10-05", row.Date)
	assert.Equal(t, "9000", row.Amount)
	assert.Equal(t, "점심 회사", row.Tags)
}

func TestHandle_UpdatedFollowsUserSettings(t *testing.T) {
	repo := newRepo(t)
	store := memory.New()
	w := NewSyncWorker(store, repo, repo, nil)
	ctx := context.Background()

	_, err := repo.UpsertUserSettings(ctx, core.UserSettings{
		UserID: "u1", SalaryDay: 1, Currency: "USD", Locale: "en-US",
	})
	require.NoError(t, err)

	tx, err := repo.CreateTransaction(ctx, lunch("u1"))
	require.NoError(t, err)
	stale := tx

	tx.Amount = decimal.NewFromInt(12000)
	tx, err = repo.UpdateTransaction(ctx, tx)
	require.NoError(t, err)

	// the event body is older than the stored row
	require.NoError(t, w.Handle(ctx, amqp.NewTransactionEvent(amqp.ActionUpdated, stale)))

	row, ok := store.Get(tx.ID)
	require.True(t, ok)
	assert.Equal(t, "October 2025", row.Period)
	assert.Equal(t, "12000", row.Amount)
	assert.Len(t, store.Rows(), 1)
}

func TestHandle_SkipsVanishedTransaction(t *testing.T) {
	repo := newRepo(t)
	store := memory.New()
	w := NewSyncWorker(store, repo, repo, nil)

	evt := amqp.NewTransactionEvent(amqp.ActionCreated, core.Transaction{ID: "gone", UserID: "u1"})
	require.NoError(t, w.Handle(context.Background(), evt))
	assert.Empty(t, store.Rows())
}

func TestHandle_DeleteRemovesRow(t *testing.T) {
	store := memory.New()
	w := NewSyncWorker(store, nil, nil, nil)
	ctx := context.Background()

	tx := lunch("u1")
	tx.ID = "t1"
	require.NoError(t, w.Handle(ctx, amqp.NewTransactionEvent(amqp.ActionCreated, tx)))
	require.Len(t, store.Rows(), 1)

	require.NoError(t, w.Handle(ctx, amqp.NewTransactionEvent(amqp.ActionDeleted, tx)))
	assert.Empty(t, store.Rows())

	// redelivery is harmless
	require.NoError(t, w.Handle(ctx, amqp.NewTransactionEvent(amqp.ActionDeleted, tx)))
}

func TestHandle_WithoutSourceNeedsBody(t *testing.T) {
	w := NewSyncWorker(memory.New(), nil, nil, nil)
	evt := &amqp.TransactionEvent{Action: amqp.ActionCreated, ID: "t1", UserID: "u1"}
	assert.Error(t, w.Handle(context.Background(), evt))
}

type failingExporter struct{}

func (failingExporter) UpsertRow(context.Context, sheets.Row) error { return errors.New("quota exceeded") }
func (failingExporter) DeleteRow(context.Context, string) error     { return errors.New("quota exceeded") }

func TestHandle_ExporterErrorIsReturned(t *testing.T) {
	w := NewSyncWorker(failingExporter{}, nil, nil, nil)
	tx := lunch("u1")
	tx.ID = "t1"

	err := w.Handle(context.Background(), amqp.NewTransactionEvent(amqp.ActionCreated, tx))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestBackfill(t *testing.T) {
	repo := newRepo(t)
	store := memory.New()
	w := NewSyncWorker(store, repo, repo, nil)
	ctx := context.Background()

	for i := 0; i < storage.MaxPageSize+5; i++ {
		tx := lunch("u1")
		tx.Date = tx.Date.Add(time.Duration(i) * time.Hour)
		_, err := repo.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}
	_, err := repo.CreateTransaction(ctx, lunch("u2"))
	require.NoError(t, err)

	n, err := w.Backfill(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, storage.MaxPageSize+5, n)
	assert.Len(t, store.Rows(), storage.MaxPageSize+5)
}

func TestBackfill_NeedsSource(t *testing.T) {
	_, err := NewSyncWorker(memory.New(), nil, nil, nil).Backfill(context.Background(), "u1")
	assert.Error(t, err)
}
