// Package search produces the visible subset of a transaction snapshot:
// free-text query plus structured filters, stable display ordering and
// fixed-size pagination.
package search

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// DefaultPageSize is the fixed page size used by the listing
const DefaultPageSize = 10

const (
	resultTTL     = time.Minute
	cleanupPeriod = 5 * time.Minute
)

// Filters is the structured filter set. Zero values mean "ALL"/unset; the
// amount bounds arrive as raw text because the form accepts both "." and ","
// decimal separators (malformed bounds are treated as unset, as the original
// filter panel did).
type Filters struct {
	Status   domain.Status
	Type     domain.Type
	Category domain.Category

	DateFrom *time.Time
	DateTo   *time.Time

	MinAmount string
	MaxAmount string
}

// Engine filters, sorts and paginates transaction snapshots. The localized
// type labels are injected because free-text search matches what the user
// sees, while every structured comparison stays on the enum identifiers.
// Filtered result sets are cached per (snapshot, query, filters) so page
// requests do not recompute from scratch.
type Engine struct {
	labels  map[domain.Type]string
	results *gocache.Cache
}

// NewEngine creates a search engine. labels may be nil, in which case the
// enum identifiers double as display labels.
func NewEngine(labels map[domain.Type]string) *Engine {
	return &Engine{
		labels:  labels,
		results: gocache.New(resultTTL, cleanupPeriod),
	}
}

// Search returns the matching transactions sorted for display: by effective
// date descending, stable with respect to the input order. The result is
// always a fresh slice the caller may reorder freely; the cached result and
// the input snapshot are never exposed for mutation.
func (e *Engine) Search(txs []*domain.Transaction, query string, f Filters) []*domain.Transaction {
	key := e.fingerprint(txs, query, f)
	if cached, ok := e.results.Get(key); ok {
		return append([]*domain.Transaction(nil), cached.([]*domain.Transaction)...)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	minAmount := parseBound(f.MinAmount)
	maxAmount := parseBound(f.MaxAmount)

	matched := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if e.matches(tx, q, f, minAmount, maxAmount) {
			matched = append(matched, tx)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].EffectiveDate().After(matched[j].EffectiveDate())
	})

	e.results.Set(key, matched, gocache.DefaultExpiration)
	return append([]*domain.Transaction(nil), matched...)
}

// Page returns one fixed-size page of the search result plus the total match
// count. Pages are 1-based; a page past the end is empty.
func (e *Engine) Page(txs []*domain.Transaction, query string, f Filters, page, size int) ([]*domain.Transaction, int) {
	matched := e.Search(txs, query, f)
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(matched) {
		return []*domain.Transaction{}, len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched)
}

func (e *Engine) matches(tx *domain.Transaction, q string, f Filters, minAmount, maxAmount *decimal.Decimal) bool {
	if q != "" {
		inDescription := strings.Contains(strings.ToLower(tx.Description), q)
		inLabel := strings.Contains(strings.ToLower(e.label(tx.Type)), q)
		if !inDescription && !inLabel {
			return false
		}
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.DateFrom != nil && tx.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && tx.Date.After(*f.DateTo) {
		return false
	}
	if minAmount != nil && tx.Amount.LessThan(*minAmount) {
		return false
	}
	if maxAmount != nil && tx.Amount.GreaterThan(*maxAmount) {
		return false
	}
	return true
}

func (e *Engine) label(t domain.Type) string {
	if e.labels != nil {
		if label, ok := e.labels[t]; ok {
			return label
		}
	}
	return string(t)
}

func parseBound(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := domain.ParseDecimal(s)
	if err != nil {
		return nil
	}
	return &d
}

// fingerprint keys the result cache. It hashes the snapshot's identity
// (ids, statuses, amounts, dates) so a mutated snapshot can never hit a
// stale entry.
func (e *Engine) fingerprint(txs []*domain.Transaction, query string, f Filters) string {
	h := fnv.New64a()
	for _, tx := range txs {
		fmt.Fprintf(h, "%s|%s|%s|%d;", tx.ID, tx.Status, tx.Amount.String(), tx.EffectiveDate().Unix())
	}
	from, to := "", ""
	if f.DateFrom != nil {
		from = f.DateFrom.Format(time.RFC3339)
	}
	if f.DateTo != nil {
		to = f.DateTo.Format(time.RFC3339)
	}
	return fmt.Sprintf("%x|%s|%s|%s|%s|%s|%s|%s|%s",
		h.Sum64(), strings.ToLower(strings.TrimSpace(query)),
		f.Status, f.Type, f.Category, from, to, f.MinAmount, f.MaxAmount)
}
