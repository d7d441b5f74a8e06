// Package metrics computes the derived aggregates over a transaction
// snapshot: balance, income, expense, highest expense, per-category breakdown
// and per-month net balance. Every function here is pure, total on empty
// input, and independent of the input ordering.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// HighestExpense is the single largest settled expense, with its description
type HighestExpense struct {
	Amount      decimal.Decimal
	Description string
}

// CategoryShare is one slice of the expense breakdown
type CategoryShare struct {
	Category   domain.Category
	Amount     decimal.Decimal
	Percentage float64
}

// MonthlyNet is the income minus expense of one calendar month
type MonthlyNet struct {
	Month string // "yyyy-mm"
	Net   decimal.Decimal
}

// contributes reports whether a transaction counts toward settled totals:
// cancelled records are dropped first, then only PROCESSED ones remain.
func contributes(tx *domain.Transaction) bool {
	if tx.Status == domain.StatusCancelled {
		return false
	}
	return tx.Status == domain.StatusProcessed
}

// Balance sums the signed amounts of all settled transactions
func Balance(txs []*domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !contributes(tx) {
			continue
		}
		total = total.Add(tx.SignedAmount())
	}
	return total
}

// Income sums the settled income-bearing transactions
func Income(txs []*domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !contributes(tx) || !tx.Type.IsIncome() {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// Expense sums the settled outflow transactions as a positive value
func Expense(txs []*domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !contributes(tx) || !tx.Type.IsOutflow() {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// FindHighestExpense returns the largest settled expense, or nil when no
// expense exists
func FindHighestExpense(txs []*domain.Transaction) *HighestExpense {
	var highest *HighestExpense
	for _, tx := range txs {
		if !contributes(tx) || !tx.Type.IsOutflow() {
			continue
		}
		if highest == nil || tx.Amount.GreaterThan(highest.Amount) {
			highest = &HighestExpense{Amount: tx.Amount, Description: tx.Description}
		}
	}
	return highest
}

// CategoryBreakdown groups settled expenses by category, with each group's
// share of the total. Empty groups are omitted; the result is sorted by
// descending amount.
func CategoryBreakdown(txs []*domain.Transaction) []CategoryShare {
	byCategory := make(map[domain.Category]decimal.Decimal)
	total := decimal.Zero
	for _, tx := range txs {
		if !contributes(tx) || !tx.Type.IsOutflow() {
			continue
		}
		category := tx.Category
		if category == "" {
			category = domain.CategoryOutros
		}
		byCategory[category] = byCategory[category].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}
	if total.IsZero() {
		return nil
	}

	shares := make([]CategoryShare, 0, len(byCategory))
	for category, amount := range byCategory {
		pct, _ := amount.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		shares = append(shares, CategoryShare{
			Category:   category,
			Amount:     amount,
			Percentage: pct,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].Amount.Equal(shares[j].Amount) {
			return shares[i].Amount.GreaterThan(shares[j].Amount)
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// MonthlyBalance computes income minus expense per calendar month of the
// nominal date, sorted chronologically
func MonthlyBalance(txs []*domain.Transaction) []MonthlyNet {
	byMonth := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !contributes(tx) {
			continue
		}
		key := domain.MonthKey(tx.Date)
		byMonth[key] = byMonth[key].Add(tx.SignedAmount())
	}

	months := make([]MonthlyNet, 0, len(byMonth))
	for key, net := range byMonth {
		months = append(months, MonthlyNet{Month: key, Net: net})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}
