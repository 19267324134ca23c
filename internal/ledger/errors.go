package ledger

import "errors"

var (
	// ErrConnection indicates the ledger server is unreachable or rejected
	// the session credentials.
	ErrConnection = errors.New("ledger connection failed")
	// ErrEncryptionKey indicates an encrypted budget was requested with a
	// missing or wrong end-to-end encryption password.
	ErrEncryptionKey = errors.New("budget encryption key invalid")
	// ErrNoSession indicates a budget operation was attempted before Init
	// or after Shutdown.
	ErrNoSession = errors.New("no ledger session open")
	// ErrNoBudgetLoaded indicates a budget-level operation was attempted
	// before DownloadBudget or LoadBudget.
	ErrNoBudgetLoaded = errors.New("no budget loaded")
	// ErrBudgetNotFound indicates the requested budget does not exist in
	// the local cache directory.
	ErrBudgetNotFound = errors.New("budget not found in local cache")
)
