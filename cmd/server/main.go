package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytebank/bytebank-backend/internal/adapter/httpapi"
	"github.com/bytebank/bytebank-backend/internal/adapter/repository/postgres"
	"github.com/bytebank/bytebank-backend/internal/config"
	"github.com/bytebank/bytebank-backend/internal/domain"
	"github.com/bytebank/bytebank-backend/internal/logger"
	"github.com/bytebank/bytebank-backend/internal/usecase/classifier"
	"github.com/bytebank/bytebank-backend/internal/usecase/lifecycle"
	"github.com/bytebank/bytebank-backend/internal/usecase/metrics"
	"github.com/bytebank/bytebank-backend/internal/usecase/search"
	"github.com/bytebank/bytebank-backend/internal/usecase/seeder"
)

// typeLabels are the localized display labels free-text search matches
// against, alongside the description
var typeLabels = map[domain.Type]string{
	domain.TypeDeposit:  "Depósito",
	domain.TypeTransfer: "Transferência",
	domain.TypePayment:  "Pagamento",
	domain.TypeWithdraw: "Saque",
	domain.TypePix:      "Pix",
}

func main() {
	log := logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := postgres.NewDB(cfg.ConnectionString())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewTransactionRepository(db)

	if cfg.SeedOnStart {
		if err := seeder.NewSeeder(repo).Seed(context.Background(), time.Now()); err != nil {
			log.Error("failed to seed sample data", "error", err)
			os.Exit(1)
		}
	}

	server := httpapi.NewServer(
		repo,
		lifecycle.NewService(repo, classifier.NewKeyword()),
		metrics.NewService(repo),
		search.NewEngine(typeLabels),
		log,
		httpapi.Options{
			APIToken:       cfg.APIToken,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
