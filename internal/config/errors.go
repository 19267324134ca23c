package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidLedgerConfigs indicates invalid ledger connection settings
	// (for example, missing server URL, password, or data directory).
	ErrInvalidLedgerConfigs = errors.New("invalid ledger configuration")
	// ErrNoSyncTargets indicates that no budget sync IDs were configured,
	// or that one of the configured IDs is blank.
	ErrNoSyncTargets = errors.New("no sync targets configured")
	// ErrPasswordListTooLong indicates that more budget passwords than
	// budget sync IDs were configured, breaking positional matching.
	ErrPasswordListTooLong = errors.New("more budget passwords than sync ids")
	// ErrInvalidScheduleConfigs indicates invalid schedule settings
	// (for example, an empty cron expression).
	ErrInvalidScheduleConfigs = errors.New("invalid schedule configuration")
)
