// Package export writes accepted transactions to an external journal.
package export

import (
	"context"

	"fintrack/internal/core"
)

// TransactionWriter appends a transaction to the journal and returns a
// reference to where it landed.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction) (string, error)
}
