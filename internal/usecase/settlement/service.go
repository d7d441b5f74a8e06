// Package settlement resolves transactions whose settlement window has
// elapsed. It runs out-of-band (see cmd/worker); the lifecycle core only ever
// sets processingUntil as a hint and never performs this transition itself.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// Service flips PROCESSING transactions to PROCESSED once their settlement
// window has passed
type Service struct {
	Repo domain.TransactionRepository
}

// NewService creates a new settlement Service instance
func NewService(repo domain.TransactionRepository) *Service {
	return &Service{Repo: repo}
}

// Sweep settles every due PROCESSING transaction and returns how many were
// settled. A record without a processingUntil hint is left alone; a later
// sweep picks it up once something sets the hint.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	txs, err := s.Repo.List(ctx, domain.ListQuery{Status: domain.StatusProcessing})
	if err != nil {
		return 0, fmt.Errorf("failed to list processing transactions: %w", err)
	}

	settled := 0
	for _, tx := range txs {
		if tx.ProcessingUntil == nil || now.Before(*tx.ProcessingUntil) {
			continue
		}
		processed := domain.StatusProcessed
		if _, err := s.Repo.Update(ctx, tx.ID, domain.Patch{
			Status:               &processed,
			ClearProcessingUntil: true,
		}); err != nil {
			return settled, fmt.Errorf("failed to settle transaction %s: %w", tx.ID, err)
		}
		settled++
	}
	return settled, nil
}
