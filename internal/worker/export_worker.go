// Package worker consumes transaction events and mirrors accepted
// transactions to the external journal.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
)

// Store is the read access the worker needs on the ledger.
type Store interface {
	GetByID(ctx context.Context, id string) (core.Transaction, error)
}

// ExportWorker appends newly created transactions to the journal. The
// journal is append-only, so updates and deletions are acknowledged
// without touching it.
type ExportWorker struct {
	store  Store
	writer export.TransactionWriter
}

func NewExportWorker(store Store, writer export.TransactionWriter) *ExportWorker {
	return &ExportWorker{store: store, writer: writer}
}

// HandleEvent processes a single transaction event from the queue.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"message_id", msg.MessageID,
		"transaction_id", msg.TransactionID,
		"action", msg.Action)

	if msg.Action != amqp.ActionCreated {
		slog.DebugContext(ctx, "Journal is append-only, skipping event",
			"transaction_id", msg.TransactionID, "action", msg.Action)
		return nil
	}

	if w.writer == nil {
		slog.WarnContext(ctx, "No journal writer configured, skipping export",
			"transaction_id", msg.TransactionID)
		return nil
	}

	tx, err := w.store.GetByID(ctx, msg.TransactionID)
	if err != nil {
		// The record was deleted before we got to it. Nothing to export.
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before export, dropping event",
				"transaction_id", msg.TransactionID)
			return nil
		}
		return fmt.Errorf("get transaction %s: %w", msg.TransactionID, err)
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("export transaction %s: %w", msg.TransactionID, err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", msg.TransactionID, "ref", ref)
	return nil
}
