// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package models

// BudgetMetadata is the content of the metadata.json file the ledger client
// writes into each cached budget directory. This service only ever reads it;
// the single mutation it performs is deleting the whole directory during a
// retry reset.
type BudgetMetadata struct {
	// ID is the budget's local on-disk identifier; it names the cache
	// subdirectory the budget lives in.
	ID string `json:"id"`

	// GroupID is the server-assigned sync identifier of the budget.
	GroupID string `json:"groupId"`

	// Name is the human-readable budget name as known to the server.
	Name string `json:"name,omitempty"`
}

// CacheEntry links one cached budget directory to the sync identifier it was
// downloaded for. Entries are produced by scanning the data directory.
type CacheEntry struct {
	// DirectoryName is the first-level subdirectory of the data dir holding
	// this budget's files. Matches BudgetMetadata.ID in practice, but the
	// resolver trusts the directory listing, not the metadata, for paths.
	DirectoryName string

	// LocalBudgetID is the budget's local identifier from metadata.json.
	LocalBudgetID string

	// SyncID is the groupId from metadata.json.
	SyncID string
}

// Account is one ledger account row as read from the loaded budget's local
// store. BalanceCurrent is nil when the account has no recorded balance
// (off-budget accounts that were never bank-synced).
type Account struct {
	ID             string
	Name           string
	BalanceCurrent *int64 // cents
	Closed         bool
}
