// Package services orchestrates ledger operations across storage and the
// event queue.
package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Store is the persistence contract the service runs on.
type Store interface {
	Create(ctx context.Context, req core.CreateRequest) (core.Transaction, bool, error)
	Update(ctx context.Context, id, callerOwnerID string, patch core.UpdateRequest) (core.Transaction, error)
	Delete(ctx context.Context, id, callerOwnerID string) error
	GetByID(ctx context.Context, id string) (core.Transaction, error)
	ListByOwner(ctx context.Context, ownerID string, f core.ListFilter) ([]core.Transaction, error)
}

// LedgerService persists mutations and announces them on the event queue.
// Publishing is best effort: a broker failure is logged and never fails
// the request, since the write already committed.
type LedgerService struct {
	store  Store
	events *amqp.Client
}

func NewLedgerService(store Store, events *amqp.Client) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// CreateTransaction records a new transaction. The boolean is false when
// an idempotency key replay returned the existing record; replays publish
// no event because nothing changed.
func (s *LedgerService) CreateTransaction(ctx context.Context, req core.CreateRequest) (core.Transaction, bool, error) {
	tx, created, err := s.store.Create(ctx, req)
	if err != nil {
		return core.Transaction{}, false, err
	}
	if created {
		s.publish(ctx, tx.ID, tx.OwnerID, amqp.ActionCreated)
	}
	return tx, created, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id, callerOwnerID string, patch core.UpdateRequest) (core.Transaction, error) {
	tx, err := s.store.Update(ctx, id, callerOwnerID, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, tx.ID, tx.OwnerID, amqp.ActionUpdated)
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id, callerOwnerID string) error {
	if err := s.store.Delete(ctx, id, callerOwnerID); err != nil {
		return err
	}
	s.publish(ctx, id, callerOwnerID, amqp.ActionDeleted)
	return nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string, f core.ListFilter) ([]core.Transaction, error) {
	return s.store.ListByOwner(ctx, ownerID, f)
}

// Summarize derives the owner's financial summary from their full ledger.
func (s *LedgerService) Summarize(ctx context.Context, ownerID string) (core.Summary, error) {
	txs, err := s.store.ListByOwner(ctx, ownerID, core.ListFilter{})
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

func (s *LedgerService) publish(ctx context.Context, transactionID, ownerID, action string) {
	if s.events == nil {
		slog.DebugContext(ctx, "Event queue not configured, skipping publish",
			"transaction_id", transactionID, "action", action)
		return
	}
	msg := amqp.NewTransactionEventMessage(transactionID, ownerID, action)
	if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"transaction_id", transactionID, "action", action, "error", err)
	}
}
