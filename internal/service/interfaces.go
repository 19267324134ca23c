// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

// Package service implements the sync daemon's core logic: the cron
// scheduler that fires cycles, the orchestrator that walks the configured
// budgets with bounded retries, the session manager for the single ledger
// session, the local cache resolver, and the balance reconciler.
package service

import (
	"context"

	"github.com/MRudenko/go-budget-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mocks.go -package=mock

// SessionManager owns the lifecycle of the single active ledger session.
type SessionManager interface {
	// Open establishes a new session: it ensures the local data directory
	// exists and is writable, then authenticates against the ledger
	// server. A failure here is fatal for the current cycle.
	Open(ctx context.Context) (models.Session, error)

	// Close tears the given session down. Close never fails the caller:
	// teardown errors are logged and swallowed.
	Close(ctx context.Context, session models.Session)

	// Reset closes the given session and opens a fresh one. Used between
	// retry attempts to recover from a wedged session.
	Reset(ctx context.Context, session models.Session) (models.Session, error)

	// Shutdown closes whatever session is open without opening a new one.
	// Used on daemon stop and on unrecoverable cycle errors.
	Shutdown(ctx context.Context)
}

// CacheResolver maps server-assigned sync IDs to locally cached budgets by
// scanning the data directory's metadata descriptors.
type CacheResolver interface {
	// Resolve scans the data directory and returns a syncID → local budget
	// ID index. Directories with missing or malformed metadata are skipped
	// with a warning; they never fail the scan.
	Resolve() (map[string]string, error)

	// Invalidate deletes the cached budget directory for the given sync
	// ID, forcing the next attempt to download it afresh. A missing cache
	// entry is not an error.
	Invalidate(syncID string) error
}

// SyncOrchestrator runs one full sync cycle over all configured targets.
type SyncOrchestrator interface {
	// RunCycle opens a session, syncs every configured budget strictly in
	// order with bounded per-target retries, and closes the session
	// exactly once. The returned error is a [*CycleError] naming every
	// target that exhausted its attempts; targets that succeeded are
	// unaffected by failures of their neighbours.
	RunCycle(ctx context.Context) (models.CycleReport, error)
}

// BalanceReconciler repairs account balances that the bank sync wrote
// through the direct path by re-writing them through the conflict-free
// path, so the values survive the next push.
type BalanceReconciler interface {
	// Reconcile re-applies every present balance of the loaded budget as a
	// conflict-free update. It reports false when any account could not be
	// repaired; reconciliation is best-effort and never fails an attempt.
	Reconcile(ctx context.Context, session models.Session) bool
}

// Scheduler fires sync cycles on a cron schedule.
type Scheduler interface {
	// Start arms the schedule. When run-on-start is configured, one cycle
	// runs synchronously before the first scheduled fire.
	Start()

	// Run starts the scheduler; it makes the Scheduler usable as a
	// long-running worker.
	Run()

	// Stop disarms the schedule and waits for an in-flight cycle to
	// finish.
	Stop()
}
