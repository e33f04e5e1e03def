package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/validator"
)

// Service produces payment reports over a transaction Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates the billing service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MonthlyReport fetches transactions created within [from, to] and folds
// them into the monthly report. Either bound may be nil. Returns
// ErrNoTransactions when nothing matches.
func (s *Service) MonthlyReport(ctx context.Context, from, to *time.Time) (*Report, error) {
	if err := validator.Apply(
		validator.OrderedDateRange("endDate", from, to),
	); err != nil {
		return nil, err
	}

	transactions, err := s.store.ListByCreatedRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	report, err := Aggregate(transactions, from, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment report built",
		logger.Component("billing"),
		slog.Int("months", len(report.Chart.Labels)),
		slog.Int("transactions", len(transactions)),
	)
	return report, nil
}
