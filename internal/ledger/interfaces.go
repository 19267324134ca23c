// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

// Package ledger provides the client for the remote budget ledger service.
//
// The primary abstraction is [Client], which decouples the sync services
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPClient]) that maintains the single active session,
// the local budget cache directory, and the loaded budget's SQLite store.
//
// Error values defined in errors.go are mapped from transport failures and
// HTTP status codes so that callers can use [errors.Is] for
// transport-agnostic error handling (e.g. [ErrConnection] when the server
// is unreachable, [ErrEncryptionKey] for a wrong or missing budget
// password).
package ledger

import (
	"context"

	"github.com/MRudenko/go-budget-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/ledger_client_mock.go -package=mock

// Client is the single-session client for the remote ledger service. All
// operations after Init act on the one active session, and all budget-level
// operations after DownloadBudget/LoadBudget act on the one loaded budget.
// The client is driven strictly sequentially by the orchestrator; methods
// are not safe for concurrent use with each other.
type Client interface {
	// Init opens the session: it remembers dataDir as the local budget
	// cache root and authenticates against serverURL with the account
	// password. Returns an error wrapping [ErrConnection] if the server is
	// unreachable or the credentials are rejected.
	Init(ctx context.Context, dataDir, serverURL, password string) error

	// Shutdown tears the session down: the loaded budget store is closed
	// and the bearer token is discarded. Safe to call with no session open.
	Shutdown(ctx context.Context) error

	// DownloadBudget fetches the budget identified by req.SyncID from the
	// server into the local cache directory and loads it. For an encrypted
	// budget the request password is used to derive the file key; a nil or
	// wrong password fails with an error wrapping [ErrEncryptionKey].
	DownloadBudget(ctx context.Context, req models.DownloadBudgetRequest) error

	// LoadBudget opens the already-cached budget stored under localID in
	// the data directory. Returns an error wrapping [ErrBudgetNotFound]
	// when no such cache directory exists.
	LoadBudget(ctx context.Context, localID string) error

	// RunBankSync pulls transactions and balances from the budget's linked
	// bank data sources into the loaded budget's local store. Balance
	// values are written through the direct path, not the conflict-free
	// one; see BalanceReconciler for the repair.
	RunBankSync(ctx context.Context) error

	// Sync pushes the loaded budget's locally queued conflict-free edit
	// messages to the server.
	Sync(ctx context.Context) error

	// Accounts reads all accounts of the loaded budget from its local
	// store, including their current raw balance values.
	Accounts(ctx context.Context) ([]models.Account, error)

	// ApplyUpdate writes one row update into the loaded budget through the
	// conflict-free path: the row is updated and one edit message per
	// field is queued for the next Sync.
	ApplyUpdate(ctx context.Context, table, id string, fields map[string]any) error

	// Token returns the session's bearer token, or an empty string when no
	// session is open.
	Token() string
}
