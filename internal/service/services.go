// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"fmt"

	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/journal"
	"github.com/MRudenko/go-budget-sync/internal/ledger"
	"github.com/MRudenko/go-budget-sync/internal/logger"
)

// Services aggregates the daemon's services for single-point dependency
// injection.
type Services struct {
	Sessions     SessionManager
	Cache        CacheResolver
	Reconciler   BalanceReconciler
	Orchestrator SyncOrchestrator
	Scheduler    Scheduler
}

// NewServices wires the full service graph from configuration, the ledger
// client and the attempt journal.
func NewServices(cfg *config.StructuredConfig, client ledger.Client, recorder journal.Recorder, log *logger.Logger) (*Services, error) {
	sessions := NewSessionManager(cfg.Ledger, client, log)
	cache := NewCacheResolver(cfg.Ledger.DataDir, log)
	reconciler := NewBalanceReconciler(client, log)
	orchestrator := NewSyncOrchestrator(cfg.Sync.Targets(), client, sessions, cache, reconciler, recorder, log)

	scheduler, err := NewScheduler(cfg.Sync, orchestrator, sessions, log)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Services{
		Sessions:     sessions,
		Cache:        cache,
		Reconciler:   reconciler,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
	}, nil
}
