// Package storage persists the ledger in SQLite. It owns record identity,
// timestamps, and the idempotency guard; all domain validation lives in
// internal/core and runs before any write.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
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

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, owner_id, kind, amount, category, description, occurred_on, idempotency_key, created_at, updated_at`

// Create validates and inserts a new transaction. When req carries an
// idempotency key that already exists, the prior record is returned
// unchanged and the boolean is false ("already applied"). A raced unique
// violation on the key is recovered the same way instead of surfacing.
func (r *SQLiteRepository) Create(ctx context.Context, req core.CreateRequest) (core.Transaction, bool, error) {
	if err := req.Validate(); err != nil {
		return core.Transaction{}, false, err
	}

	if req.IdempotencyKey != "" {
		existing, err := r.getByIdempotencyKey(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			slog.InfoContext(ctx, "Create replayed, returning existing transaction",
				"id", existing.ID, "idempotency_key", req.IdempotencyKey)
			return existing, false, nil
		case !errors.Is(err, core.ErrNotFound):
			return core.Transaction{}, false, err
		}
	}

	now := time.Now().UTC()
	tx := core.Transaction{
		ID:             newTransactionID(now),
		OwnerID:        req.OwnerID,
		Kind:           req.Kind,
		Amount:         req.Amount,
		Category:       req.Category,
		Description:    req.Description,
		OccurredOn:     req.OccurredOn,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, string(tx.Kind), tx.Amount.Decimal().String(),
		tx.Category, tx.Description, tx.OccurredOn.String(),
		nullableKey(tx.IdempotencyKey),
		tx.CreatedAt.Format(time.RFC3339Nano), tx.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if req.IdempotencyKey != "" && isUniqueViolation(err) {
			// A concurrent writer won the race on the key. The unique
			// index is the arbiter; treat the conflict as "already
			// created" and hand back the winner's row.
			slog.WarnContext(ctx, "Idempotency key raced, re-reading existing transaction",
				"idempotency_key", req.IdempotencyKey, "error", core.ErrConflict)
			existing, readErr := r.getByIdempotencyKey(ctx, req.IdempotencyKey)
			if readErr != nil {
				return core.Transaction{}, false, fmt.Errorf("re-read after conflict: %w", readErr)
			}
			return existing, false, nil
		}
		return core.Transaction{}, false, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID, "owner", tx.OwnerID, "kind", tx.Kind, "amount", tx.Amount.String())
	return tx, true, nil
}

// Update loads, authorizes, merges the patch, and persists. Fields absent
// from the patch keep their stored values.
func (r *SQLiteRepository) Update(ctx context.Context, id, callerOwnerID string, patch core.UpdateRequest) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.GetByID(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := core.Authorize(tx, callerOwnerID); err != nil {
		return core.Transaction{}, err
	}

	patch.ApplyTo(&tx)
	tx.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET kind = ?, amount = ?, category = ?, description = ?, occurred_on = ?, updated_at = ?
		 WHERE id = ?`,
		string(tx.Kind), tx.Amount.Decimal().String(), tx.Category, tx.Description,
		tx.OccurredOn.String(), tx.UpdatedAt.Format(time.RFC3339Nano), tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID, "owner", tx.OwnerID)
	return tx, nil
}

// Delete removes the row outright. There is no tombstone: a deleted
// transaction is gone and cannot be resurrected.
func (r *SQLiteRepository) Delete(ctx context.Context, id, callerOwnerID string) error {
	tx, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := core.Authorize(tx, callerOwnerID); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner", callerOwnerID)
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return tx, nil
}

// ListByOwner returns one owner's transactions under the store-level
// filters: exact category, exact kind, and an optional date sort. The
// date sorts break ties on id so the order is total.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string, f core.ListFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ?`
	args := []any{ownerID}

	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Kind.Valid() {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}

	switch f.Sort {
	case core.SortDateDesc:
		query += ` ORDER BY occurred_on DESC, id DESC`
	case core.SortDateAsc:
		query += ` ORDER BY occurred_on ASC, id ASC`
	default:
		query += ` ORDER BY rowid`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) getByIdempotencyKey(ctx context.Context, key string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE idempotency_key = ?`, key)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by idempotency key: %w", err)
	}
	return tx, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                   core.Transaction
		kind, amt, occurred  string
		key                  sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &kind, &amt, &tx.Category, &tx.Description,
		&occurred, &key, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Kind = core.Kind(kind)
	d, err := decimal.NewFromString(amt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored amount %q: %w", amt, err)
	}
	tx.Amount = core.NewMoney(d)

	tx.OccurredOn, err = core.ParseDate(occurred)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", occurred, err)
	}
	tx.IdempotencyKey = key.String

	if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("stored created_at %q: %w", createdAt, err)
	}
	if tx.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("stored updated_at %q: %w", updatedAt, err)
	}
	return tx, nil
}

func nullableKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
