package httpapi

import (
	"net/http"
)

// getSummary handles GET /summary with the dashboard headline figures
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	overview, err := s.metrics.GetOverview(r.Context(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(overview))
}

// getCategoryBreakdown handles GET /summary/categories
func (s *Server) getCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	shares, err := s.metrics.GetCategoryBreakdown(r.Context(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	dtos := make([]categoryShareDTO, 0, len(shares))
	for _, share := range shares {
		dtos = append(dtos, categoryShareDTO{
			Category:   string(share.Category),
			Amount:     share.Amount.InexactFloat64(),
			Percentage: share.Percentage,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// getMonthlyBalance handles GET /summary/monthly
func (s *Server) getMonthlyBalance(w http.ResponseWriter, r *http.Request) {
	months, err := s.metrics.GetMonthlyBalance(r.Context(), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	dtos := make([]monthlyNetDTO, 0, len(months))
	for _, month := range months {
		dtos = append(dtos, monthlyNetDTO{
			Month: month.Month,
			Net:   month.Net.InexactFloat64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}
