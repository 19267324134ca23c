// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

// Package journal persists cycle and attempt history for post-mortem
// inspection. The journal is strictly best-effort: the orchestrator logs
// journal write failures and keeps syncing, so a broken journal file never
// blocks a cycle.
package journal

import (
	"context"

	"github.com/MRudenko/go-budget-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/journal_recorder_mock.go -package=mock

// Recorder records sync cycles and their per-target attempt outcomes.
type Recorder interface {
	// BeginCycle opens a new cycle record and returns its identifier.
	BeginCycle(ctx context.Context) (string, error)

	// RecordAttempt appends one attempt outcome to the given cycle.
	RecordAttempt(ctx context.Context, cycleID string, outcome models.SyncAttemptOutcome) error

	// EndCycle closes the cycle record with its final report.
	EndCycle(ctx context.Context, cycleID string, report models.CycleReport) error

	// Close releases the underlying storage.
	Close() error
}
