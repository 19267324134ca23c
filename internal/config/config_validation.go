// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// daemon invariants before it is used at startup.
//
// A validation failure is startup-fatal: the daemon refuses to run with a
// config that could silently sync nothing or pair passwords with the wrong
// budgets.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Ledger.ServerURL == "" || cfg.Ledger.Password == "" || cfg.Ledger.DataDir == "" {
		return ErrInvalidLedgerConfigs
	}

	if len(cfg.Sync.BudgetSyncIDs) == 0 {
		return ErrNoSyncTargets
	}
	for _, syncID := range cfg.Sync.BudgetSyncIDs {
		if syncID == "" {
			return ErrNoSyncTargets
		}
	}

	// Passwords are matched to sync IDs by position; a longer password
	// list means at least one password has no budget to belong to.
	if len(cfg.Sync.BudgetPasswords) > len(cfg.Sync.BudgetSyncIDs) {
		return ErrPasswordListTooLong
	}

	if cfg.Sync.CronExpression == "" {
		return ErrInvalidScheduleConfigs
	}

	return nil
}
