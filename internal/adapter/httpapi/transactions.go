package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bytebank/bytebank-backend/internal/domain"
	"github.com/bytebank/bytebank-backend/internal/usecase/normalizer"
	"github.com/bytebank/bytebank-backend/internal/usecase/search"
)

// listTransactions handles GET /transactions with the json-server query
// surface: q for free text, type/status/category for structured filters,
// date_gte/date_lte and amount_gte/amount_lte for ranges, _sort/_order for
// ordering and _start/_limit or _page/_limit for paging. The total match
// count goes out in X-Total-Count.
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	params := r.URL.Query()
	filters := search.Filters{
		MinAmount: params.Get("amount_gte"),
		MaxAmount: params.Get("amount_lte"),
	}
	if v := params.Get("status"); v != "" {
		if status, err := domain.ParseStatus(v); err == nil {
			filters.Status = status
		}
	}
	if v := params.Get("type"); v != "" {
		if typ, err := domain.ParseType(v); err == nil {
			filters.Type = typ
		}
	}
	if v := params.Get("category"); v != "" {
		if cat, err := domain.ParseCategory(v); err == nil {
			filters.Category = cat
		}
	}
	if t, ok := parseTimeParam(params.Get("date_gte")); ok {
		filters.DateFrom = &t
	}
	if t, ok := parseTimeParam(params.Get("date_lte")); ok {
		filters.DateTo = &t
	}

	query := params.Get("q")

	var (
		matched []*domain.Transaction
		total   int
	)
	if page, ok := intParam(params.Get("_page")); ok {
		size, _ := intParam(params.Get("_limit"))
		matched, total = s.search.Page(txs, query, filters, page, size)
	} else {
		matched = s.search.Search(txs, query, filters)
		total = len(matched)
		matched = applySort(matched, params.Get("_sort"), params.Get("_order"))
		matched = applySlice(matched, params.Get("_start"), params.Get("_limit"))
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, toTransactionDTOs(matched))
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	tx, err := s.lifecycle.Create(r.Context(), req.toInput(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	normalized := normalizer.Normalize([]*domain.Transaction{tx}, s.now())
	writeJSON(w, http.StatusOK, toTransactionDTO(normalized[0]))
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	tx, err := s.lifecycle.Update(r.Context(), chi.URLParam(r, "id"), req.toInput(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.lifecycle.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cancelTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.lifecycle.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) restoreTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.lifecycle.Restore(r.Context(), chi.URLParam(r, "id"), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// applySort re-sorts a display-ordered result when the client asks for an
// explicit key. Without _sort the search ordering (effective date descending)
// stands.
func applySort(txs []*domain.Transaction, key, order string) []*domain.Transaction {
	asc := order != "desc"
	switch key {
	case "date":
		sort.SliceStable(txs, func(i, j int) bool {
			if asc {
				return txs[i].EffectiveDate().Before(txs[j].EffectiveDate())
			}
			return txs[i].EffectiveDate().After(txs[j].EffectiveDate())
		})
	case "amount":
		sort.SliceStable(txs, func(i, j int) bool {
			if asc {
				return txs[i].Amount.LessThan(txs[j].Amount)
			}
			return txs[i].Amount.GreaterThan(txs[j].Amount)
		})
	}
	return txs
}

func applySlice(txs []*domain.Transaction, startParam, limitParam string) []*domain.Transaction {
	start, _ := intParam(startParam)
	if start < 0 {
		start = 0
	}
	if start >= len(txs) {
		return []*domain.Transaction{}
	}
	end := len(txs)
	if limit, ok := intParam(limitParam); ok && limit > 0 && start+limit < end {
		end = start + limit
	}
	return txs[start:end]
}

func intParam(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseTimeParam(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
