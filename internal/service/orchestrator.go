// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"context"
	"fmt"

	"github.com/MRudenko/go-budget-sync/internal/journal"
	"github.com/MRudenko/go-budget-sync/internal/ledger"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/models"
)

// maxSyncAttempts caps how many times one target is tried per cycle. The
// second attempt runs with a fresh session and an evicted cache, so a third
// try would repeat the exact same conditions.
const maxSyncAttempts = 2

// targetState tracks where one target is in its per-cycle retry lifecycle.
type targetState int

const (
	targetIdle targetState = iota
	targetAttempting
	targetSucceeded
	targetFailed
)

func (s targetState) String() string {
	switch s {
	case targetIdle:
		return "idle"
	case targetAttempting:
		return "attempting"
	case targetSucceeded:
		return "succeeded"
	case targetFailed:
		return "failed"
	default:
		return fmt.Sprintf("targetState(%d)", int(s))
	}
}

// targetRun is the per-cycle retry state machine for one sync target.
type targetRun struct {
	target  models.SyncTarget
	state   targetState
	attempt int
}

func newTargetRun(target models.SyncTarget) *targetRun {
	return &targetRun{target: target, state: targetIdle}
}

func (r *targetRun) begin() {
	r.state = targetAttempting
	r.attempt = 1
}

func (r *targetRun) succeed() {
	r.state = targetSucceeded
}

// retry advances to the next attempt when the cap allows it; once the cap
// is reached the run transitions to failed and retry reports false.
func (r *targetRun) retry() bool {
	if r.attempt < maxSyncAttempts {
		r.attempt++
		return true
	}

	r.state = targetFailed
	return false
}

type syncOrchestrator struct {
	targets    []models.SyncTarget
	client     ledger.Client
	sessions   SessionManager
	cache      CacheResolver
	reconciler BalanceReconciler
	recorder   journal.Recorder
	log        *logger.Logger
}

// NewSyncOrchestrator creates the orchestrator over the given ordered
// targets. The recorder is best-effort; pass [journal.Nop] to disable it.
func NewSyncOrchestrator(
	targets []models.SyncTarget,
	client ledger.Client,
	sessions SessionManager,
	cache CacheResolver,
	reconciler BalanceReconciler,
	recorder journal.Recorder,
	log *logger.Logger,
) SyncOrchestrator {
	return &syncOrchestrator{
		targets:    targets,
		client:     client,
		sessions:   sessions,
		cache:      cache,
		reconciler: reconciler,
		recorder:   recorder,
		log:        log,
	}
}

func (o *syncOrchestrator) RunCycle(ctx context.Context) (models.CycleReport, error) {
	session, err := o.sessions.Open(ctx)
	if err != nil {
		return models.CycleReport{}, fmt.Errorf("open session: %w", err)
	}
	// Reset replaces the session mid-cycle, so close whatever session is
	// current when the cycle ends. This is the cycle's single Close.
	defer func() { o.sessions.Close(ctx, session) }()

	cycleID, err := o.recorder.BeginCycle(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("journal unavailable, cycle will not be recorded")
		cycleID = ""
	}

	o.log.Info().Int("targets", len(o.targets)).Str("sessionID", session.ID).
		Msg("sync cycle started")

	var report models.CycleReport
	for _, target := range o.targets {
		run := newTargetRun(target)
		o.runTarget(ctx, &session, cycleID, run)
		if run.state == targetFailed {
			report.FailedSyncIDs = append(report.FailedSyncIDs, target.SyncID)
		}
	}

	if cycleID != "" {
		if err := o.recorder.EndCycle(ctx, cycleID, report); err != nil {
			o.log.Warn().Err(err).Str("cycleID", cycleID).Msg("journal cycle record not closed")
		}
	}

	if report.Failed() {
		return report, &CycleError{FailedSyncIDs: report.FailedSyncIDs}
	}

	o.log.Info().Int("targets", len(o.targets)).Msg("sync cycle completed")
	return report, nil
}

// runTarget drives one target's state machine to a terminal state. Between
// a failed attempt and its retry the session is reset and the target's
// cache entry is evicted, so the retry starts from clean conditions.
func (o *syncOrchestrator) runTarget(ctx context.Context, session *models.Session, cycleID string, run *targetRun) {
	run.begin()
	for run.state == targetAttempting {
		err := o.attempt(ctx, *session, run.target)

		o.recordAttempt(ctx, cycleID, models.SyncAttemptOutcome{
			SyncID:        run.target.SyncID,
			AttemptNumber: run.attempt,
			Succeeded:     err == nil,
			Err:           err,
		})

		if err == nil {
			run.succeed()
			o.log.Info().Str("syncID", run.target.SyncID).Int("attempt", run.attempt).
				Msg("budget synced")
			return
		}

		o.log.Warn().Err(err).Str("syncID", run.target.SyncID).Int("attempt", run.attempt).
			Msg("sync attempt failed")

		if !run.retry() {
			o.log.Error().Str("syncID", run.target.SyncID).Int("attempts", maxSyncAttempts).
				Msg("budget sync gave up")
			return
		}

		if fresh, rerr := o.sessions.Reset(ctx, *session); rerr != nil {
			// The retry proceeds against the dead session and fails on its
			// own; later targets are still attempted in order.
			o.log.Warn().Err(rerr).Str("syncID", run.target.SyncID).
				Msg("session reset failed before retry")
		} else {
			*session = fresh
		}

		if ierr := o.cache.Invalidate(run.target.SyncID); ierr != nil {
			o.log.Warn().Err(ierr).Str("syncID", run.target.SyncID).
				Msg("cache eviction failed before retry")
		}
	}
}

// attempt performs one full sync pass for one target: load or download the
// budget, pull bank data, repair balances, push queued edits.
func (o *syncOrchestrator) attempt(ctx context.Context, session models.Session, target models.SyncTarget) error {
	cached, err := o.cache.Resolve()
	if err != nil {
		return fmt.Errorf("resolve cache: %w", err)
	}

	if localID, ok := cached[target.SyncID]; ok {
		if err := o.client.LoadBudget(ctx, localID); err != nil {
			return fmt.Errorf("load cached budget: %w", err)
		}
	} else {
		req := models.DownloadBudgetRequest{SyncID: target.SyncID, Password: target.Password}
		if err := o.client.DownloadBudget(ctx, req); err != nil {
			return fmt.Errorf("download budget: %w", err)
		}
	}

	if err := o.client.RunBankSync(ctx); err != nil {
		return fmt.Errorf("bank sync: %w", err)
	}

	// Best-effort: an incomplete repair loses balance precision on the
	// server, it does not lose the transactions just pulled.
	if !o.reconciler.Reconcile(ctx, session) {
		o.log.Warn().Str("syncID", target.SyncID).Msg("balance reconciliation incomplete")
	}

	if err := o.client.Sync(ctx); err != nil {
		return fmt.Errorf("push edits: %w", err)
	}

	return nil
}

func (o *syncOrchestrator) recordAttempt(ctx context.Context, cycleID string, outcome models.SyncAttemptOutcome) {
	if cycleID == "" {
		return
	}

	if err := o.recorder.RecordAttempt(ctx, cycleID, outcome); err != nil {
		o.log.Warn().Err(err).Str("cycleID", cycleID).Str("syncID", outcome.SyncID).
			Msg("attempt not journaled")
	}
}
