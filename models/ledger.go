package models

import "time"

// DownloadBudgetRequest asks the ledger client to download one budget from
// the server into the local cache. Password is nil for unencrypted budgets;
// the HTTP layer must not send an empty password in its place.
type DownloadBudgetRequest struct {
	SyncID   string
	Password *string
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued by the ledger server.
type LoginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// EncryptMeta describes the end-to-end encryption parameters of a budget
// file as stored on the server. Present only for encrypted budgets.
type EncryptMeta struct {
	KeyID string `json:"keyId"`
	// Salt is the base64-encoded key-derivation salt.
	Salt string `json:"salt"`
	// TestContent is a base64-encoded blob encrypted with the budget key;
	// the client opens it to verify a candidate password before downloading
	// the full budget file.
	TestContent string `json:"testContent"`
}

// BudgetFileInfo is the server's descriptor for one syncable budget file,
// returned by GET /api/sync/files/{groupId}.
type BudgetFileInfo struct {
	Name        string       `json:"name"`
	FileID      string       `json:"fileId"`
	GroupID     string       `json:"groupId"`
	EncryptMeta *EncryptMeta `json:"encryptMeta,omitempty"`
}

// BankTransaction is one imported transaction from a linked bank account,
// as returned by the bank-sync endpoint.
type BankTransaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Amount    int64     `json:"amount"` // cents
	Payee     string    `json:"payee"`
	Date      time.Time `json:"date"`
}

// AccountBalance is the post-import balance of one account, as reported by
// the bank-sync endpoint.
type AccountBalance struct {
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"` // cents
}

// BankSyncResponse is the body of POST /api/bank-sync/{fileId}.
type BankSyncResponse struct {
	Data struct {
		Transactions []BankTransaction `json:"transactions"`
		Balances     []AccountBalance  `json:"balances"`
	} `json:"data"`
}

// CRDTMessage is one row-level edit captured by the conflict-free write
// path, queued locally until the next push.
type CRDTMessage struct {
	ID        string    `json:"id"`
	Dataset   string    `json:"dataset"`
	Row       string    `json:"row"`
	Column    string    `json:"column"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// PushRequest is the body of POST /api/sync/push: all locally queued CRDT
// messages for one budget file.
type PushRequest struct {
	FileID   string        `json:"fileId"`
	GroupID  string        `json:"groupId"`
	Messages []CRDTMessage `json:"messages"`
}

// PushResponse acknowledges a push and carries back any messages merged on
// the server since the client's last sync.
type PushResponse struct {
	Data struct {
		MergedCount int           `json:"mergedCount"`
		Messages    []CRDTMessage `json:"messages"`
	} `json:"data"`
}
