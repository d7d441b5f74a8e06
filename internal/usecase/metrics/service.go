package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bytebank/bytebank-backend/internal/domain"
	"github.com/bytebank/bytebank-backend/internal/usecase/normalizer"
)

// Overview bundles the headline figures for the dashboard cards
type Overview struct {
	Balance decimal.Decimal
	Income  decimal.Decimal
	Expense decimal.Decimal
	Highest *HighestExpense
}

// Service computes aggregates over the stored transactions. Every read runs
// the expiration normalizer first, so stale schedules never leak into totals.
type Service struct {
	Repo domain.TransactionRepository
}

// NewService creates a new metrics Service instance
func NewService(repo domain.TransactionRepository) *Service {
	return &Service{Repo: repo}
}

func (s *Service) snapshot(ctx context.Context, now time.Time) ([]*domain.Transaction, error) {
	txs, err := s.Repo.List(ctx, domain.ListQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return normalizer.Normalize(txs, now), nil
}

// GetOverview computes balance, income, expense and the highest expense
func (s *Service) GetOverview(ctx context.Context, now time.Time) (*Overview, error) {
	txs, err := s.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Balance: Balance(txs),
		Income:  Income(txs),
		Expense: Expense(txs),
		Highest: FindHighestExpense(txs),
	}, nil
}

// GetCategoryBreakdown computes the per-category expense shares
func (s *Service) GetCategoryBreakdown(ctx context.Context, now time.Time) ([]CategoryShare, error) {
	txs, err := s.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return CategoryBreakdown(txs), nil
}

// GetMonthlyBalance computes the per-month net balances
func (s *Service) GetMonthlyBalance(ctx context.Context, now time.Time) ([]MonthlyNet, error) {
	txs, err := s.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	return MonthlyBalance(txs), nil
}
