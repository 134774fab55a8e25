// Command sweeper runs the expired matching sweep once and exits. It is
// intended to be scheduled externally, for example by cron.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/config"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/infra/logger"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/jobs/expiry"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
	ticketsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/tickets"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	job := expiry.NewJob(expiry.Dependencies{
		Pool:      pool,
		Matchings: pgrepo.NewMatchingRepo(pool),
		Tickets:   ticketsvc.NewService(pgrepo.NewTicketRepo(pool)),
		Logger:    log,
	})

	if err := job.Run(ctx); err != nil {
		log.Fatal("expired matching sweep failed", zap.Error(err))
	}
}
