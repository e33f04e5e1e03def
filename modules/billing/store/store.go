// Package store provides the Postgres persistence behind the billing
// module.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artfolio/artfolio/modules/billing"
)

var _ billing.Store = (*TransactionStore)(nil)

// TransactionStore reads the transaction ledger from Postgres. Writes come
// from an external billing process.
type TransactionStore struct {
	db *pgxpool.Pool
}

// NewTransactionStore creates a Postgres-backed transaction store.
func NewTransactionStore(db *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) ListByCreatedRange(ctx context.Context, from, to *time.Time) ([]billing.Transaction, error) {
	var (
		conditions []string
		args       []any
	)
	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, amount, created_at, payment_month FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []billing.Transaction
	for rows.Next() {
		var tx billing.Transaction
		if err := rows.Scan(&tx.ID, &tx.Amount, &tx.CreatedAt, &tx.PaymentMonth); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return transactions, nil
}
