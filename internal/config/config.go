// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package config

import (
	"time"

	"github.com/MRudenko/go-budget-sync/models"
)

// StructuredConfig is the top-level configuration container for the
// go-budget-sync daemon. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line
// flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Ledger holds connection settings for the remote ledger service and
	// the local budget cache directory.
	Ledger Ledger `envPrefix:"LEDGER_"`

	// Sync holds the sync targets and the cycle schedule.
	Sync Sync `envPrefix:"SYNC_"`

	// Storage holds persistence settings for the local attempt journal.
	Storage Storage `envPrefix:"STORAGE_"`

	// Log holds the optional rotated-log-file settings for the daemon.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Ledger holds the remote ledger service connection settings.
type Ledger struct {
	// ServerURL is the base URL of the remote ledger server
	// (e.g. "https://budget.example.com").
	// Env: LEDGER_SERVER_URL
	ServerURL string `env:"SERVER_URL"`

	// Password is the server account password used to open the single
	// ledger session. Distinct from the per-budget encryption passwords.
	// Env: LEDGER_PASSWORD
	Password string `env:"PASSWORD"`

	// DataDir is the local directory holding one subdirectory per cached
	// budget. Created on startup if absent.
	// Env: LEDGER_DATA_DIR
	DataDir string `env:"DATA_DIR"`

	// RequestTimeout is the timeout applied to individual HTTP requests to
	// the ledger server (e.g. "30s"). Zero means the client default.
	// Env: LEDGER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Sync holds the configured sync targets and the cycle schedule.
type Sync struct {
	// BudgetSyncIDs is the ordered list of server-assigned sync IDs to
	// reconcile each cycle.
	// Env: SYNC_BUDGET_SYNC_IDS (comma-separated)
	BudgetSyncIDs []string `env:"BUDGET_SYNC_IDS" envSeparator:","`

	// BudgetPasswords is the list of end-to-end encryption passwords,
	// matched to BudgetSyncIDs purely by position. An empty slot means the
	// budget at that index is not password-protected. The list may be
	// shorter than BudgetSyncIDs; trailing budgets then have no password.
	// Env: SYNC_BUDGET_PASSWORDS (comma-separated)
	BudgetPasswords []string `env:"BUDGET_PASSWORDS" envSeparator:","`

	// CronExpression is the standard 5-field cron expression that fires
	// one sync cycle (e.g. "0 */4 * * *").
	// Env: SYNC_CRON
	CronExpression string `env:"CRON"`

	// Timezone is the IANA timezone the cron expression is evaluated in
	// (e.g. "Europe/Berlin"). Empty means the server's local time.
	// Env: SYNC_TIMEZONE
	Timezone string `env:"TIMEZONE"`

	// RunOnStart makes the daemon run one cycle immediately at startup,
	// before the first scheduled fire.
	// Env: SYNC_RUN_ON_START
	RunOnStart bool `env:"RUN_ON_START"`
}

// Storage holds persistence settings for the local attempt journal.
type Storage struct {
	// JournalPath is the SQLite file recording cycle and attempt history.
	// Empty disables the journal.
	// Env: STORAGE_JOURNAL_PATH
	JournalPath string `env:"JOURNAL_PATH"`
}

// Log holds the optional rotated log file settings.
type Log struct {
	// FilePath is the log file location. Empty means stdout only.
	// Env: LOG_FILE_PATH
	FilePath string `env:"FILE_PATH"`

	// MaxSizeMB is the size in megabytes at which the log file is rotated.
	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB"`

	// MaxBackups is how many rotated log files are kept.
	// Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS"`

	// MaxAgeDays is how long rotated files are kept, in days.
	// Env: LOG_MAX_AGE_DAYS
	MaxAgeDays int `env:"MAX_AGE_DAYS"`
}

// Targets pairs the configured sync IDs with their positionally-matched
// encryption passwords, producing the single ordered list the orchestrator
// works from. The pairing happens exactly once here; everything downstream
// carries the pair, never the two raw lists.
func (s Sync) Targets() []models.SyncTarget {
	targets := make([]models.SyncTarget, 0, len(s.BudgetSyncIDs))
	for i, syncID := range s.BudgetSyncIDs {
		var password *string
		if i < len(s.BudgetPasswords) && s.BudgetPasswords[i] != "" {
			p := s.BudgetPasswords[i]
			password = &p
		}
		targets = append(targets, models.SyncTarget{
			SyncID:       syncID,
			Password:     password,
			OrdinalIndex: i,
		})
	}
	return targets
}

// GetStructuredConfig loads, merges, and validates the daemon configuration
// from all available sources in the following priority order (earlier
// sources win for fields set in more than one place):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
