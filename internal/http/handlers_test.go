package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

type fakeLedger struct {
	txs            []core.Transaction
	nextID         int
	summarizeCalls int
	updateErr      error
	deleteErr      error
}

func (f *fakeLedger) CreateTransaction(ctx context.Context, req core.CreateRequest) (core.Transaction, bool, error) {
	if err := req.Validate(); err != nil {
		return core.Transaction{}, false, err
	}
	if req.IdempotencyKey != "" {
		for _, tx := range f.txs {
			if tx.OwnerID == req.OwnerID && tx.IdempotencyKey == req.IdempotencyKey {
				return tx, false, nil
			}
		}
	}
	f.nextID++
	tx := core.Transaction{
		ID:             fmt.Sprintf("%024d", f.nextID),
		OwnerID:        req.OwnerID,
		Kind:           req.Kind,
		Amount:         req.Amount,
		Category:       req.Category,
		Description:    req.Description,
		OccurredOn:     req.OccurredOn,
		IdempotencyKey: req.IdempotencyKey,
	}
	f.txs = append(f.txs, tx)
	return tx, true, nil
}

func (f *fakeLedger) UpdateTransaction(ctx context.Context, id, callerOwnerID string, patch core.UpdateRequest) (core.Transaction, error) {
	if f.updateErr != nil {
		return core.Transaction{}, f.updateErr
	}
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}
	for i, tx := range f.txs {
		if tx.ID != id {
			continue
		}
		if err := core.Authorize(tx, callerOwnerID); err != nil {
			return core.Transaction{}, err
		}
		patch.ApplyTo(&f.txs[i])
		return f.txs[i], nil
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeLedger) DeleteTransaction(ctx context.Context, id, callerOwnerID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, tx := range f.txs {
		if tx.ID != id {
			continue
		}
		if err := core.Authorize(tx, callerOwnerID); err != nil {
			return err
		}
		f.txs = append(f.txs[:i], f.txs[i+1:]...)
		return nil
	}
	return core.ErrNotFound
}

func (f *fakeLedger) ListTransactions(ctx context.Context, ownerID string, filter core.ListFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.OwnerID != ownerID {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Kind != "" && tx.Kind != filter.Kind {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeLedger) Summarize(ctx context.Context, ownerID string) (core.Summary, error) {
	f.summarizeCalls++
	owned, _ := f.ListTransactions(ctx, ownerID, core.ListFilter{})
	return core.Summarize(owned), nil
}

func newTestServer(t *testing.T) (*Server, *fakeLedger) {
	t.Helper()
	ledger := &fakeLedger{}
	s := NewServer(":0", ledger, NewHeaderIdentity(""))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, ledger
}

func doRequest(t *testing.T, s *Server, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(DefaultIdentityHeader, userID)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

const validCreateBody = `{"kind":"expense","amount":12.50,"category":"Food","description":"lunch","occurredOn":"2026-08-30"}`

func TestCreateTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/transactions", "alice", validCreateBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var got core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID == "" {
		t.Error("expected a generated id")
	}
	if got.OwnerID != "alice" {
		t.Errorf("ownerId = %q, want alice", got.OwnerID)
	}
	if got.Category != "Food" {
		t.Errorf("category = %q, want Food", got.Category)
	}
}

func TestCreateTransactionIdempotentReplay(t *testing.T) {
	s, ledger := newTestServer(t)
	body := `{"kind":"expense","amount":5,"category":"Food","description":"coffee","occurredOn":"2026-08-30","idempotencyKey":"k-1"}`

	first := doRequest(t, s, http.MethodPost, "/transactions", "alice", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.Code)
	}
	second := doRequest(t, s, http.MethodPost, "/transactions", "alice", body)
	if second.Code != http.StatusOK {
		t.Fatalf("replay status = %d, want 200", second.Code)
	}

	var a, b core.Transaction
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID {
		t.Errorf("replay returned a different record: %q vs %q", a.ID, b.ID)
	}
	if len(ledger.txs) != 1 {
		t.Errorf("stored %d transactions, want 1", len(ledger.txs))
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s, ledger := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/transactions", "alice",
		`{"kind":"expense","amount":5,"description":"no category","occurredOn":"2026-08-30"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	if len(ledger.txs) != 0 {
		t.Errorf("invalid request stored a transaction")
	}
}

func TestCreateTransactionMalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/transactions", "alice", `{"kind":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMissingIdentity(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/transactions", "/transactions/summary"} {
		rec := doRequest(t, s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without identity: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestListTransactions(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/transactions", "alice", validCreateBody)
	doRequest(t, s, http.MethodPost, "/transactions", "alice",
		`{"kind":"income","amount":100,"category":"Salary","description":"pay","occurredOn":"2026-08-01"}`)
	doRequest(t, s, http.MethodPost, "/transactions", "bob",
		`{"kind":"expense","amount":9,"category":"Food","description":"snack","occurredOn":"2026-08-15"}`)

	rec := doRequest(t, s, http.MethodGet, "/transactions", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d transactions, want 2", len(got))
	}

	rec = doRequest(t, s, http.MethodGet, "/transactions?kind=income", "alice", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != core.Income {
		t.Errorf("kind filter returned %+v", got)
	}
}

func TestListTransactionsEmptyIsArray(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/transactions", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty list body = %s, want []", body)
	}
}

func TestListTransactionsRejectsBadParams(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/transactions?sort=amount", "alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad sort: status = %d, want 400", rec.Code)
	}
	rec = doRequest(t, s, http.MethodGet, "/transactions?kind=transfer", "alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad kind: status = %d, want 400", rec.Code)
	}
}

func TestUpdateTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	created := doRequest(t, s, http.MethodPost, "/transactions", "alice", validCreateBody)
	var tx core.Transaction
	if err := json.Unmarshal(created.Body.Bytes(), &tx); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s, http.MethodPost, "/transactions/"+tx.ID, "alice", `{"description":"team lunch"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Description != "team lunch" {
		t.Errorf("description = %q, want team lunch", got.Description)
	}
	if got.Category != "Food" {
		t.Errorf("untouched field changed: category = %q", got.Category)
	}
}

func TestUpdateReportsNotOwnerAsNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	created := doRequest(t, s, http.MethodPost, "/transactions", "alice", validCreateBody)
	var tx core.Transaction
	if err := json.Unmarshal(created.Body.Bytes(), &tx); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s, http.MethodPost, "/transactions/"+tx.ID, "mallory", `{"description":"mine now"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign update: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/transactions/000000000000000000000000", "alice", `{"description":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing id: status = %d, want 404", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	created := doRequest(t, s, http.MethodPost, "/transactions", "alice", validCreateBody)
	var tx core.Transaction
	if err := json.Unmarshal(created.Body.Bytes(), &tx); err != nil {
		t.Fatal(err)
	}

	// Not the owner: the delete route distinguishes 401 from 404.
	rec := doRequest(t, s, http.MethodDelete, "/transactions/"+tx.ID, "mallory", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign delete: status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/transactions/"+tx.ID, "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner delete: status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/transactions/"+tx.ID, "alice", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestSummaryEndpointAndCache(t *testing.T) {
	s, ledger := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/transactions", "alice",
		`{"kind":"income","amount":100,"category":"Salary","description":"pay","occurredOn":"2026-08-01"}`)
	doRequest(t, s, http.MethodPost, "/transactions", "alice",
		`{"kind":"expense","amount":40,"category":"Food","description":"groceries","occurredOn":"2026-08-02"}`)

	rec := doRequest(t, s, http.MethodGet, "/transactions/summary", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got core.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.NetBalance.String() != "60.00" {
		t.Errorf("netBalance = %s, want 60.00", got.NetBalance)
	}

	// Second read is served from cache.
	doRequest(t, s, http.MethodGet, "/transactions/summary", "alice", "")
	if ledger.summarizeCalls != 1 {
		t.Errorf("summarize calls = %d, want 1 (cached)", ledger.summarizeCalls)
	}

	// A mutation invalidates the cached summary.
	doRequest(t, s, http.MethodPost, "/transactions", "alice",
		`{"kind":"expense","amount":10,"category":"Fun","description":"cinema","occurredOn":"2026-08-03"}`)
	doRequest(t, s, http.MethodGet, "/transactions/summary", "alice", "")
	if ledger.summarizeCalls != 2 {
		t.Errorf("summarize calls after mutation = %d, want 2", ledger.summarizeCalls)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/transactions", "alice", "{}")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /transactions: status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow = %q, want GET, POST", allow)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, s, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}
}
