package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

// createTransactionRequest is the wire shape of POST /transactions.
type createTransactionRequest struct {
	Kind           core.Kind  `json:"kind"`
	Amount         core.Money `json:"amount"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	OccurredOn     core.Date  `json:"occurredOn"`
	IdempotencyKey string     `json:"idempotencyKey"`
}

// updateTransactionRequest is a merge patch: absent fields keep their
// stored value.
type updateTransactionRequest struct {
	Kind        *core.Kind  `json:"kind"`
	Amount      *core.Money `json:"amount"`
	Category    *string     `json:"category"`
	Description *string     `json:"description"`
	OccurredOn  *core.Date  `json:"occurredOn"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.WarnContext(r.Context(), "Malformed create payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := core.CreateRequest{
		OwnerID:        p.UserID,
		Kind:           body.Kind,
		Amount:         body.Amount,
		Category:       body.Category,
		Description:    body.Description,
		OccurredOn:     body.OccurredOn,
		IdempotencyKey: strings.TrimSpace(body.IdempotencyKey),
	}

	tx, created, err := s.ledger.CreateTransaction(r.Context(), req)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	s.invalidateSummary(p.UserID)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	filter := core.ListFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Kind:     core.Kind(strings.TrimSpace(q.Get("kind"))),
		Sort:     strings.TrimSpace(q.Get("sort")),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be 'income' or 'expense'")
		return
	}
	switch filter.Sort {
	case "", core.SortDateDesc, core.SortDateAsc:
	default:
		writeError(w, http.StatusBadRequest, "sort must be 'date_desc' or 'date_asc'")
		return
	}

	txs, err := s.ledger.ListTransactions(r.Context(), p.UserID, filter)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if cached, found := s.summaryCache.Get(p.UserID); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "owner", p.UserID)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.ledger.Summarize(r.Context(), p.UserID)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	s.summaryCache.Set(p.UserID, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "no transaction found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		s.handleDeleteTransaction(w, r, id)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.WarnContext(r.Context(), "Malformed update payload", "error", err, "transaction_id", id)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := core.UpdateRequest{
		Kind:        body.Kind,
		Amount:      body.Amount,
		Category:    body.Category,
		Description: body.Description,
		OccurredOn:  body.OccurredOn,
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), id, p.UserID, patch)
	if err != nil {
		// A caller probing someone else's record learns nothing: the
		// update route reports not-owner the same as not-found.
		if errors.Is(err, core.ErrUnauthorized) {
			writeError(w, http.StatusNotFound, "no transaction found")
			return
		}
		s.writeLedgerError(w, r, err)
		return
	}

	s.invalidateSummary(p.UserID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id, p.UserID); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	s.invalidateSummary(p.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction successfully deleted"})
}

// writeLedgerError maps service errors onto HTTP statuses.
func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "no transaction found")
	case errors.Is(err, core.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "not authorized")
	default:
		slog.ErrorContext(r.Context(), "Ledger operation failed", "method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
