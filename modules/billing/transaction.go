// Package billing turns the flat transaction ledger into month-bucketed
// revenue reports for the admin dashboard.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoTransactions reports an empty filtered set. It is distinct from a
// zero-valued report so consumers can tell "no data in range" apart from
// "everything netted to zero".
var ErrNoTransactions = errors.New("no transactions found")

// Transaction is an immutable financial event. Amount is signed cents: a
// non-negative amount is a payment, a negative one a refund. PaymentMonth
// is the month the transaction is attributed to for reporting, which may
// differ from CreatedAt.
type Transaction struct {
	ID           uuid.UUID
	Amount       int64
	CreatedAt    time.Time
	PaymentMonth time.Time
}

// Store is the transaction store contract. Transactions are written by an
// external billing process and read-only here.
type Store interface {
	// ListByCreatedRange returns transactions whose CreatedAt falls within
	// [from, to]. Either bound may be nil for an open range.
	ListByCreatedRange(ctx context.Context, from, to *time.Time) ([]Transaction, error)
}
