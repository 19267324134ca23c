// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/logger"
)

type cronScheduler struct {
	cron         *cron.Cron
	entryID      cron.EntryID
	orchestrator SyncOrchestrator
	sessions     SessionManager
	log          *logger.Logger
	runOnStart   bool
}

// NewScheduler creates a cron-driven scheduler that fires one sync cycle
// per schedule hit. Overlapping fires are impossible: a hit that arrives
// while a cycle is still running is skipped, not queued.
func NewScheduler(cfg config.Sync, orchestrator SyncOrchestrator, sessions SessionManager, log *logger.Logger) (Scheduler, error) {
	location := time.Local
	if cfg.Timezone != "" {
		var err error
		location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
	}

	s := &cronScheduler{
		orchestrator: orchestrator,
		sessions:     sessions,
		log:          log,
		runOnStart:   cfg.RunOnStart,
	}

	cronLog := &cronLogAdapter{log: log}
	s.cron = cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)

	entryID, err := s.cron.AddJob(cfg.CronExpression, cron.FuncJob(s.tick))
	if err != nil {
		return nil, fmt.Errorf("register schedule %q: %w", cfg.CronExpression, err)
	}
	s.entryID = entryID

	return s, nil
}

func (s *cronScheduler) Start() {
	// The startup cycle runs synchronously before the schedule is armed,
	// so it can never overlap a scheduled fire.
	if s.runOnStart {
		s.log.Info().Msg("running startup sync cycle")
		s.tick()
	}

	s.cron.Start()
	s.logNextFire()
}

// Run satisfies the worker contract.
func (s *cronScheduler) Run() {
	s.Start()
}

func (s *cronScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// tick runs exactly one sync cycle. It never lets a failure escape into the
// cron runner: cycle errors and panics are logged, the ledger session is
// torn down, and the daemon stays alive for the next fire.
func (s *cronScheduler) tick() {
	defer s.logNextFire()
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Interface("panic", rec).Msg("sync cycle panicked")
			s.sessions.Shutdown(context.Background())
		}
	}()

	ctx := s.log.WithContext(context.Background())

	report, err := s.orchestrator.RunCycle(ctx)
	if err != nil {
		s.log.Error().Err(err).Strs("failedSyncIDs", report.FailedSyncIDs).
			Msg("sync cycle failed")
		s.sessions.Shutdown(context.Background())
		return
	}
}

func (s *cronScheduler) logNextFire() {
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return
	}

	s.log.Info().Time("nextFire", next).Msg("next sync cycle scheduled")
}

// cronLogAdapter exposes the daemon logger through the cron runner's
// logging interface, so skipped-fire notices land in the same stream.
type cronLogAdapter struct {
	log *logger.Logger
}

func (a *cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (a *cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
