// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MRudenko/go-budget-sync/internal/utils"
	"github.com/MRudenko/go-budget-sync/models"
)

// budgetStore wraps the loaded budget's local SQLite database. It exposes
// the two access paths the sync cycle needs: the direct path used by bank
// sync, and the conflict-free path that records an edit message per column
// so the change is carried by the next push.
type budgetStore struct {
	db      *sql.DB
	uuidGen *utils.UUIDGenerator
}

func newBudgetStore(path string) (*budgetStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open budget db: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping budget db: %w", err)
	}

	// Older budget files predate the local message queue.
	if _, err = db.Exec(createMessagesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure messages table: %w", err)
	}

	return &budgetStore{db: db, uuidGen: utils.NewUUIDGenerator()}, nil
}

func newBudgetStoreFromDB(db *sql.DB) *budgetStore {
	return &budgetStore{db: db, uuidGen: utils.NewUUIDGenerator()}
}

func (s *budgetStore) Close() error {
	return s.db.Close()
}

// Accounts returns all live accounts with their current raw balance values.
// A NULL balance_current stays nil on the model.
func (s *budgetStore) Accounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, getAllAccounts)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acct models.Account
		var balance sql.NullInt64
		if err = rows.Scan(&acct.ID, &acct.Name, &balance, &acct.Closed); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if balance.Valid {
			v := balance.Int64
			acct.BalanceCurrent = &v
		}
		accounts = append(accounts, acct)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// ApplyUpdate writes one row update through the conflict-free path: the row
// itself is updated and one edit message per field is queued for the next
// push. Both writes happen in a single transaction so a queued message never
// describes a write that did not land.
func (s *budgetStore) ApplyUpdate(ctx context.Context, table, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	query, args, err := sq.Update(table).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update for %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s row %s: %w", table, id, err)
	}

	now := time.Now().UTC()
	for column, value := range fields {
		msgID := s.uuidGen.Generate()
		_, err = tx.ExecContext(ctx, insertMessage,
			msgID, table, id, column, formatMessageValue(value), now.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("queue message for %s.%s: %w", table, column, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update tx: %w", err)
	}

	return nil
}

// ApplyBankSync lands the bank-sync result in the local store through the
// direct write path: transactions are upserted and balances overwritten
// without queueing edit messages.
func (s *budgetStore) ApplyBankSync(ctx context.Context, resp models.BankSyncResponse) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bank sync tx: %w", err)
	}
	defer tx.Rollback()

	for _, trx := range resp.Data.Transactions {
		_, err = tx.ExecContext(ctx, upsertTransaction,
			trx.ID, trx.AccountID, trx.Amount, trx.Payee, trx.Date.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("upsert transaction %s: %w", trx.ID, err)
		}
	}

	for _, bal := range resp.Data.Balances {
		if _, err = tx.ExecContext(ctx, setAccountBalance, bal.Balance, bal.AccountID); err != nil {
			return fmt.Errorf("set balance for account %s: %w", bal.AccountID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bank sync tx: %w", err)
	}

	return nil
}

// UnsentMessages returns all queued edit messages in timestamp order.
func (s *budgetStore) UnsentMessages(ctx context.Context) ([]models.CRDTMessage, error) {
	rows, err := s.db.QueryContext(ctx, getUnsentMessages)
	if err != nil {
		return nil, fmt.Errorf("query unsent messages: %w", err)
	}
	defer rows.Close()

	var messages []models.CRDTMessage
	for rows.Next() {
		var msg models.CRDTMessage
		var ts string
		if err = rows.Scan(&msg.ID, &msg.Dataset, &msg.Row, &msg.Column, &msg.Value, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if msg.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse message timestamp: %w", err)
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// MarkMessagesSent flags the given messages as pushed. Called only after
// the server acknowledged the push.
func (s *budgetStore) MarkMessagesSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark sent tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, markMessageSent, id); err != nil {
			return fmt.Errorf("mark message %s sent: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit mark sent tx: %w", err)
	}

	return nil
}

func formatMessageValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}
