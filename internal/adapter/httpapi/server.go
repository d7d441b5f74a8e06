// Package httpapi exposes the transaction store and its derived views over
// HTTP. The query surface of the listing endpoint follows the json-server
// conventions (q, _sort, _order, _start, _limit) the original record store
// spoke, so existing clients keep working.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bytebank/bytebank-backend/internal/domain"
	"github.com/bytebank/bytebank-backend/internal/usecase/lifecycle"
	"github.com/bytebank/bytebank-backend/internal/usecase/metrics"
	"github.com/bytebank/bytebank-backend/internal/usecase/normalizer"
	"github.com/bytebank/bytebank-backend/internal/usecase/search"
)

// Options configures the HTTP server
type Options struct {
	APIToken       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server wires the use cases to HTTP routes
type Server struct {
	repo      domain.TransactionRepository
	lifecycle *lifecycle.Service
	metrics   *metrics.Service
	search    *search.Engine
	log       *slog.Logger
	opts      Options

	// now is swappable so handler tests can pin the clock
	now func() time.Time
}

// NewServer creates a new HTTP server
func NewServer(
	repo domain.TransactionRepository,
	lifecycleSvc *lifecycle.Service,
	metricsSvc *metrics.Service,
	searchEngine *search.Engine,
	log *slog.Logger,
	opts Options,
) *Server {
	return &Server{
		repo:      repo,
		lifecycle: lifecycleSvc,
		metrics:   metricsSvc,
		search:    searchEngine,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// Router builds the chi router with all routes and middleware
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if s.opts.RateLimitRPS > 0 {
			r.Use(rateLimit(newClientLimiter(s.opts.RateLimitRPS, s.opts.RateLimitBurst)))
		}
		r.Use(bearerAuth(s.opts.APIToken))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.listTransactions)
			r.Post("/", s.createTransaction)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getTransaction)
				r.Put("/", s.updateTransaction)
				r.Delete("/", s.deleteTransaction)
				r.Post("/cancel", s.cancelTransaction)
				r.Post("/restore", s.restoreTransaction)
			})
		})

		r.Route("/summary", func(r chi.Router) {
			r.Get("/", s.getSummary)
			r.Get("/categories", s.getCategoryBreakdown)
			r.Get("/monthly", s.getMonthlyBalance)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain and lifecycle errors onto HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var fieldErrs lifecycle.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: fieldErrs})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "transaction not found"})
	case errors.Is(err, lifecycle.ErrNotEditable),
		errors.Is(err, lifecycle.ErrNotCancellable),
		errors.Is(err, lifecycle.ErrNotRestorable),
		errors.Is(err, lifecycle.ErrNotRemovable),
		errors.Is(err, lifecycle.ErrLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// snapshot loads every transaction and applies the read-time normalization,
// so expired schedules surface as cancelled regardless of what is stored
func (s *Server) snapshot(r *http.Request) ([]*domain.Transaction, error) {
	txs, err := s.repo.List(r.Context(), domain.ListQuery{})
	if err != nil {
		return nil, err
	}
	return normalizer.Normalize(txs, s.now()), nil
}
