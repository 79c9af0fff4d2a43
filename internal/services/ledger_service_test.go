package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

// fakeStore is an in-memory Store used to exercise the service without a
// database or broker.
type fakeStore struct {
	created   []core.Transaction
	updateErr error
	txs       []core.Transaction
}

func (f *fakeStore) Create(ctx context.Context, req core.CreateRequest) (core.Transaction, bool, error) {
	if err := req.Validate(); err != nil {
		return core.Transaction{}, false, err
	}
	for _, tx := range f.created {
		if req.IdempotencyKey != "" && tx.IdempotencyKey == req.IdempotencyKey {
			return tx, false, nil
		}
	}
	tx := core.Transaction{
		ID:             string(rune('a' + len(f.created))),
		OwnerID:        req.OwnerID,
		Kind:           req.Kind,
		Amount:         req.Amount,
		Category:       req.Category,
		Description:    req.Description,
		OccurredOn:     req.OccurredOn,
		IdempotencyKey: req.IdempotencyKey,
	}
	f.created = append(f.created, tx)
	return tx, true, nil
}

func (f *fakeStore) Update(ctx context.Context, id, caller string, patch core.UpdateRequest) (core.Transaction, error) {
	if f.updateErr != nil {
		return core.Transaction{}, f.updateErr
	}
	return core.Transaction{ID: id, OwnerID: caller}, nil
}

func (f *fakeStore) Delete(ctx context.Context, id, caller string) error { return nil }

func (f *fakeStore) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeStore) ListByOwner(ctx context.Context, owner string, filter core.ListFilter) ([]core.Transaction, error) {
	return f.txs, nil
}

func validCreate(t *testing.T) core.CreateRequest {
	t.Helper()
	amt, err := core.ParseAmount("10")
	if err != nil {
		t.Fatalf("parse amount: %v", err)
	}
	return core.CreateRequest{
		OwnerID:     "alice",
		Kind:        core.Expense,
		Amount:      amt,
		Category:    "Food",
		Description: "lunch",
		OccurredOn:  core.NewDate(2025, 1, 1),
	}
}

func TestCreateTransactionWithoutBroker(t *testing.T) {
	// A nil event client must never fail the write path.
	svc := NewLedgerService(&fakeStore{}, nil)

	tx, created, err := svc.CreateTransaction(context.Background(), validCreate(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created || tx.OwnerID != "alice" {
		t.Fatalf("unexpected result: created=%v tx=%+v", created, tx)
	}
}

func TestCreateTransactionIdempotentReplay(t *testing.T) {
	store := &fakeStore{}
	svc := NewLedgerService(store, nil)
	req := validCreate(t)
	req.IdempotencyKey = "k1"

	first, created, err := svc.CreateTransaction(context.Background(), req)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	replay, created, err := svc.CreateTransaction(context.Background(), req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if created || replay.ID != first.ID {
		t.Fatalf("replay should return existing record: created=%v id=%s", created, replay.ID)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := NewLedgerService(&fakeStore{}, nil)
	req := validCreate(t)
	req.Description = ""
	if _, _, err := svc.CreateTransaction(context.Background(), req); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTransactionPropagatesErrors(t *testing.T) {
	svc := NewLedgerService(&fakeStore{updateErr: core.ErrUnauthorized}, nil)
	_, err := svc.UpdateTransaction(context.Background(), "x", "mallory", core.UpdateRequest{})
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	amt := func(s string) core.Money {
		m, err := core.ParseAmount(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return m
	}
	store := &fakeStore{txs: []core.Transaction{
		{Kind: core.Income, Amount: amt("100"), Category: "Salary"},
		{Kind: core.Expense, Amount: amt("30"), Category: "Food"},
		{Kind: core.Expense, Amount: amt("20"), Category: "Rent"},
	}}
	svc := NewLedgerService(store, nil)

	s, err := svc.Summarize(context.Background(), "alice")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.NetBalance.String() != "50.00" {
		t.Fatalf("net balance: %s", s.NetBalance)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(s.ByCategory))
	}
}
