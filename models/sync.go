// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package models

// SyncTarget pairs a server-assigned sync identifier with the optional
// end-to-end encryption password for that budget.
//
// Targets are built once at config-load time from the ordered sync-ID list
// and the positionally-matched password list. An empty slot in the password
// list means the budget at that index is not password-protected, which is
// why Password is a pointer: nil is "no password", not "empty password".
type SyncTarget struct {
	// SyncID is the server-assigned group identifier used to download the
	// budget. Distinct from the budget's local on-disk identifier.
	SyncID string

	// Password is the end-to-end encryption password for this budget, or
	// nil when the budget is not encrypted.
	Password *string

	// OrdinalIndex is the zero-based position of this target in the
	// configured sync-ID list. Used only for logging.
	OrdinalIndex int
}

// SyncAttemptOutcome records the result of a single sync attempt for one
// target. Outcomes are cycle-scoped: they are consumed for logging, retry
// decisions, and the attempt journal, then discarded.
type SyncAttemptOutcome struct {
	SyncID        string
	AttemptNumber int
	Succeeded     bool
	Err           error
}

// CycleReport aggregates the per-target outcomes of one full orchestrator
// pass over all configured sync targets.
type CycleReport struct {
	// FailedSyncIDs lists every target that exhausted its attempts, in
	// configured order. Empty on a fully successful cycle.
	FailedSyncIDs []string
}

// Failed reports whether any target exhausted its attempts this cycle.
func (r CycleReport) Failed() bool {
	return len(r.FailedSyncIDs) > 0
}
