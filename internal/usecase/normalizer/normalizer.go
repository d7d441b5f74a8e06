// Package normalizer projects raw store snapshots into canonical form before
// any consumer sees them: status casing is unified, missing categories are
// defaulted, and stale schedules are expired. It is a read-time projection,
// never a stored mutation.
package normalizer

import (
	"time"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// Normalize returns a normalized copy of the snapshot. The input is never
// mutated and applying Normalize twice yields the same result as applying it
// once.
func Normalize(txs []*domain.Transaction, now time.Time) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, normalizeOne(tx, now))
	}
	return out
}

func normalizeOne(tx *domain.Transaction, now time.Time) *domain.Transaction {
	c := tx.Clone()

	// legacy records carry mixed-case status literals
	if s, err := domain.ParseStatus(string(c.Status)); err == nil {
		c.Status = s
	}

	// income-bearing types are INCOME by definition; outflows without an
	// explicit category default to OUTROS
	if c.Type.IsIncome() {
		c.Category = domain.CategoryIncome
	} else if c.Category == "" || c.Category == domain.CategoryIncome {
		c.Category = domain.CategoryOutros
	}

	expire(c, now)
	return c
}

// expire reclassifies a SCHEDULED transaction whose effective day has passed
// without execution. The resulting cancellation is locked: an automatic
// expiration is not restorable, unlike a manual one.
func expire(tx *domain.Transaction, now time.Time) {
	if tx.Status != domain.StatusScheduled {
		return
	}
	effective := tx.Date
	if tx.ScheduledFor != nil {
		effective = *tx.ScheduledFor
	}
	if !domain.BeforeDay(effective, now, now.Location()) {
		return
	}
	tx.Status = domain.StatusCancelled
	tx.PreviousStatus = domain.StatusScheduled
	tx.Locked = true
}
