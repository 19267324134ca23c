package ledger

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRudenko/go-budget-sync/models"
)

func newTestStore(t *testing.T) (*budgetStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newBudgetStoreFromDB(db), mock
}

var accountColumns = []string{"id", "name", "balance_current", "closed"}

// ── Accounts ─────────────────────────────────────────────────────────────────

func TestBudgetStore_Accounts_NullBalanceStaysNil(t *testing.T) {
	store, mock := newTestStore(t)

	rows := sqlmock.NewRows(accountColumns).
		AddRow("acct-1", "Checking", int64(12345), false).
		AddRow("acct-2", "Off-budget", nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnRows(rows)

	accounts, err := store.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	require.NotNil(t, accounts[0].BalanceCurrent)
	assert.Equal(t, int64(12345), *accounts[0].BalanceCurrent)
	assert.Nil(t, accounts[1].BalanceCurrent, "NULL баланс остаётся nil")
}

func TestBudgetStore_Accounts_QueryError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnError(sql.ErrConnDone)

	_, err := store.Accounts(context.Background())
	assert.Error(t, err)
}

// ── ApplyUpdate ──────────────────────────────────────────────────────────────

func TestBudgetStore_ApplyUpdate_WritesRowAndQueuesMessage(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance_current = ? WHERE id = ?")).
		WithArgs(int64(500), "acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO messages_crdt")).
		WithArgs(sqlmock.AnyArg(), "accounts", "acct-1", "balance_current", "500", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.ApplyUpdate(context.Background(), "accounts", "acct-1",
		map[string]any{"balance_current": int64(500)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetStore_ApplyUpdate_EmptyFieldsIsNoop(t *testing.T) {
	store, mock := newTestStore(t)

	err := store.ApplyUpdate(context.Background(), "accounts", "acct-1", map[string]any{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "без полей — ни одного SQL-вызова")
}

func TestBudgetStore_ApplyUpdate_RollsBackOnUpdateError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := store.ApplyUpdate(context.Background(), "accounts", "acct-1",
		map[string]any{"balance_current": int64(1)})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── ApplyBankSync ────────────────────────────────────────────────────────────

func TestBudgetStore_ApplyBankSync_DirectWrites(t *testing.T) {
	store, mock := newTestStore(t)

	var resp models.BankSyncResponse
	resp.Data.Transactions = []models.BankTransaction{
		{ID: "t-1", AccountID: "acct-1", Amount: -999, Payee: "Grocer", Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}
	resp.Data.Balances = []models.AccountBalance{
		{AccountID: "acct-1", Balance: 42000},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs("t-1", "acct-1", int64(-999), "Grocer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance_current")).
		WithArgs(int64(42000), "acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.ApplyBankSync(context.Background(), resp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── UnsentMessages / MarkMessagesSent ────────────────────────────────────────

func TestBudgetStore_UnsentMessages(t *testing.T) {
	store, mock := newTestStore(t)

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "dataset", "row", "column", "value", "timestamp"}).
		AddRow("m-1", "accounts", "acct-1", "balance_current", "500", ts.Format(time.RFC3339Nano))
	mock.ExpectQuery(regexp.QuoteMeta("FROM messages_crdt")).WillReturnRows(rows)

	messages, err := store.UnsentMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m-1", messages[0].ID)
	assert.Equal(t, "balance_current", messages[0].Column)
	assert.True(t, ts.Equal(messages[0].Timestamp))
}

func TestBudgetStore_MarkMessagesSent(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages_crdt SET sent = 1")).
		WithArgs("m-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages_crdt SET sent = 1")).
		WithArgs("m-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.MarkMessagesSent(context.Background(), []string{"m-1", "m-2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetStore_MarkMessagesSent_EmptyIsNoop(t *testing.T) {
	store, mock := newTestStore(t)

	require.NoError(t, store.MarkMessagesSent(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── formatMessageValue ───────────────────────────────────────────────────────

func TestFormatMessageValue(t *testing.T) {
	assert.Equal(t, "text", formatMessageValue("text"))
	assert.Equal(t, "42", formatMessageValue(int64(42)))
	assert.Equal(t, "7", formatMessageValue(7))
	assert.Equal(t, "true", formatMessageValue(true))
}
