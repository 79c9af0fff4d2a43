package core

import (
	"sort"
	"strings"
)

// SortForDisplay orders transactions newest first: occurredOn descending,
// then id descending. Ids grow monotonically with creation order, so the
// tie-break puts later-created records first and no two distinct records
// ever compare equal.
func SortForDisplay(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		ti, tj := txs[i].OccurredOn.Time, txs[j].OccurredOn.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return txs[i].ID > txs[j].ID
	})
}

// MatchesQuery reports whether q is a case-insensitive substring of the
// transaction's description, category, or kind. An unset kind displays as
// "expense" and matches accordingly. Blank queries match everything.
func MatchesQuery(t Transaction, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	kind := string(t.Kind)
	if kind == "" {
		kind = string(Expense)
	}
	return strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.Category), q) ||
		strings.Contains(strings.ToLower(kind), q)
}

// FilterByText keeps the transactions matching q, preserving order.
func FilterByText(txs []Transaction, q string) []Transaction {
	if strings.TrimSpace(q) == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if MatchesQuery(t, q) {
			out = append(out, t)
		}
	}
	return out
}
