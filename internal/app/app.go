// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

// Package app assembles the sync daemon: it wires the ledger client, the
// attempt journal and the service graph together, and owns the run loop
// that blocks until a shutdown signal arrives.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/journal"
	"github.com/MRudenko/go-budget-sync/internal/ledger"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/internal/service"
	"github.com/MRudenko/go-budget-sync/internal/workers"
)

type App struct {
	services *service.Services
	recorder journal.Recorder
	log      *logger.Logger
}

// NewApp builds the full daemon from configuration. A journal that cannot
// be opened degrades to a no-op recorder instead of blocking startup.
func NewApp(cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	client := ledger.NewHTTPClient(ledger.HTTPClientConfig{Timeout: cfg.Ledger.RequestTimeout}, log)

	recorder := journal.Nop()
	if cfg.Storage.JournalPath != "" {
		sqliteRecorder, err := journal.NewSQLiteRecorder(cfg.Storage.JournalPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Storage.JournalPath).
				Msg("attempt journal disabled")
		} else {
			recorder = sqliteRecorder
		}
	}

	services, err := service.NewServices(cfg, client, recorder, log)
	if err != nil {
		return nil, fmt.Errorf("wire services: %w", err)
	}

	return &App{
		services: services,
		recorder: recorder,
		log:      log,
	}, nil
}

// Run starts the scheduler and blocks until SIGINT or SIGTERM, then stops
// the schedule, waits for an in-flight cycle and tears everything down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workers.NewWorkers(a.services.Scheduler).Run()

	<-ctx.Done()
	a.log.Info().Msg("shutdown signal received")

	a.services.Scheduler.Stop()
	a.services.Sessions.Shutdown(context.Background())

	if err := a.recorder.Close(); err != nil {
		a.log.Warn().Err(err).Msg("attempt journal close failed")
	}

	a.log.Info().Msg("daemon stopped")
	return nil
}
