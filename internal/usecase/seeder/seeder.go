package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// Seeder populates an empty store with sample transactions so a fresh
// environment has data to render
type Seeder struct {
	repo domain.TransactionRepository
}

// NewSeeder creates a new Seeder instance
func NewSeeder(repo domain.TransactionRepository) *Seeder {
	return &Seeder{repo: repo}
}

// Seed inserts the sample set when the store is empty. A store with any
// transaction at all is left untouched.
func (s *Seeder) Seed(ctx context.Context, now time.Time) error {
	existing, err := s.repo.List(ctx, domain.ListQuery{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, tx := range sampleTransactions(now) {
		if err := tx.Validate(); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func sampleTransactions(now time.Time) []*domain.Transaction {
	lastMonth := now.AddDate(0, -1, 0)
	nextWeek := now.AddDate(0, 0, 7)

	return []*domain.Transaction{
		{
			Type:        domain.TypeDeposit,
			Description: "Salário",
			Amount:      decimal.NewFromInt(4500),
			Date:        lastMonth,
			Category:    domain.CategoryIncome,
			Status:      domain.StatusProcessed,
		},
		{
			Type:        domain.TypePayment,
			Description: "Aluguel",
			Amount:      decimal.NewFromInt(1800),
			Date:        lastMonth.AddDate(0, 0, 2),
			Category:    domain.CategoryMoradia,
			Status:      domain.StatusProcessed,
		},
		{
			Type:        domain.TypePix,
			PixType:     domain.PixNormal,
			Description: "iFood",
			Amount:      decimal.NewFromFloat(64.90),
			Date:        now.AddDate(0, 0, -3),
			Category:    domain.CategoryAlimentacao,
			Status:      domain.StatusProcessed,
		},
		{
			Type:        domain.TypeWithdraw,
			Description: "Saque",
			Amount:      decimal.NewFromInt(200),
			Date:        now.AddDate(0, 0, -2),
			Category:    domain.CategoryOutros,
			Status:      domain.StatusProcessed,
		},
		{
			Type:         domain.TypePix,
			PixType:      domain.PixScheduled,
			Description:  "Pix agendado - presente",
			Amount:       decimal.NewFromInt(150),
			Date:         now,
			Category:     domain.CategoryOutros,
			Status:       domain.StatusScheduled,
			ScheduledFor: &nextWeek,
		},
	}
}
