// The worker settles due transactions on a fixed interval. It is the only
// process that moves PROCESSING records to PROCESSED; the API server never
// performs that transition inline.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytebank/bytebank-backend/internal/adapter/repository/postgres"
	"github.com/bytebank/bytebank-backend/internal/config"
	"github.com/bytebank/bytebank-backend/internal/logger"
	"github.com/bytebank/bytebank-backend/internal/usecase/settlement"
)

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

	svc := settlement.NewService(postgres.NewTransactionRepository(db))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("settlement worker started", "interval", cfg.SweepInterval.String())
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("settlement worker stopped")
			return
		case now := <-ticker.C:
			settled, err := svc.Sweep(ctx, now)
			if err != nil {
				log.Error("sweep failed", "error", err)
				continue
			}
			if settled > 0 {
				log.Info("settled transactions", "count", settled)
			}
		}
	}
}
