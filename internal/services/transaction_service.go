package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paymonth/internal/amqp"
	"paymonth/internal/core"
	"paymonth/internal/quickinput"
	"paymonth/internal/storage"
)

// TransactionStore is the persistence the service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	ListTransactions(ctx context.Context, f storage.TransactionFilter) (storage.TransactionPage, error)
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, evt *amqp.TransactionEvent) error
	Close() error
}

// Invalidator drops cached data derived from a user's transactions.
type Invalidator interface {
	Invalidate(userID string)
}

// TransactionService stores transactions locally and then announces the
// change on the event bus. Publishing is best effort: the local write is the
// source of truth and the worker can backfill missed events.
type TransactionService struct {
	store       TransactionStore
	publisher   EventPublisher
	invalidator Invalidator
	parser      *quickinput.Parser
}

// NewTransactionService wires the service. publisher and invalidator may be
// nil.
func NewTransactionService(store TransactionStore, publisher EventPublisher, invalidator Invalidator, parser *quickinput.Parser) *TransactionService {
	if parser == nil {
		parser = quickinput.NewParser(nil)
	}
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		parser:      parser,
	}
}

// TransactionPatch holds the fields of a partial update. A nil field is left
// unchanged. An empty Subcategory or PaymentMethod clears the value.
type TransactionPatch struct {
	Date          *time.Time
	Type          *core.TransactionType
	Fixed         *bool
	Category      *string
	Subcategory   *string
	Description   *string
	Amount        *decimal.Decimal
	PaymentMethod *string
	Tags          *[]string
}

// QuickAddRequest is one line of quick-entry text plus its parse options.
type QuickAddRequest struct {
	Text          string
	Locale        string
	FallbackType  *core.TransactionType
	FallbackFixed *bool
}

func normalize(tx core.Transaction) core.Transaction {
	tx.Category = strings.TrimSpace(tx.Category)
	tx.Description = strings.TrimSpace(tx.Description)
	tx.Subcategory = trimmedOrNil(tx.Subcategory)
	tx.PaymentMethod = trimmedOrNil(tx.PaymentMethod)
	if tx.Tags == nil {
		tx.Tags = []string{}
	}
	tx.Tags = core.DedupeTags(tx.Tags)
	return tx
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *TransactionService) Create(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	tx = normalize(tx)
	tx.ID = ""
	tx.UserID = userID
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.changed(ctx, amqp.ActionCreated, created)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) (storage.TransactionPage, error) {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return storage.TransactionPage{}, core.ValidationErrors{"startDate": "startDate must not be after endDate"}
	}
	return s.store.ListTransactions(ctx, f)
}

// Update applies patch to the stored transaction and saves the result.
func (s *TransactionService) Update(ctx context.Context, userID, id string, patch TransactionPatch) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Fixed != nil {
		tx.Fixed = *patch.Fixed
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		tx.Subcategory = patch.Subcategory
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.PaymentMethod != nil {
		tx.PaymentMethod = patch.PaymentMethod
	}
	if patch.Tags != nil {
		tx.Tags = *patch.Tags
	}

	tx = normalize(tx)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.changed(ctx, amqp.ActionUpdated, updated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.changed(ctx, amqp.ActionDeleted, tx)
	return nil
}

// Parse runs the quick-entry parser without saving anything.
func (s *TransactionService) Parse(req QuickAddRequest) quickinput.ParsedInput {
	return s.parser.Parse(req.Text, req.Locale, req.FallbackType, req.FallbackFixed)
}

// QuickAdd parses req.Text, fills locale defaults and creates the result. A
// line without a positive amount is rejected with a field error on amount.
func (s *TransactionService) QuickAdd(ctx context.Context, userID string, req QuickAddRequest) (core.Transaction, quickinput.ParsedInput, error) {
	parsed := s.Parse(req)
	draft, ok := s.parser.Draft(parsed, req.Locale)
	if !ok {
		return core.Transaction{}, parsed, core.ValidationErrors{"amount": "amount is required"}
	}

	created, err := s.Create(ctx, userID, draft)
	if err != nil {
		return core.Transaction{}, parsed, err
	}
	return created, parsed, nil
}

func (s *TransactionService) changed(ctx context.Context, action amqp.Action, tx core.Transaction) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(tx.UserID)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event", "action", action, "id", tx.ID)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, tx)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action,
			"id", tx.ID,
			"error", err)
	}
}

// Close releases the event publisher and, when it holds one, the store.
func (s *TransactionService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}
	return nil
}
