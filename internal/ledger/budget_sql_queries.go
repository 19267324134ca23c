// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package ledger

const (
	getAllAccounts = `
		SELECT
			id,
			name,
			balance_current,
			closed
		FROM accounts
		WHERE tombstone = 0;`

	upsertTransaction = `
		INSERT INTO transactions (
			id,
			acct,
			amount,
			description,
			date
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			amount = excluded.amount,
			description = excluded.description,
			date = excluded.date;`

	// Direct balance write used by bank sync. Bypasses the message queue,
	// which is exactly the gap BalanceReconciler repairs afterwards.
	setAccountBalance = `
		UPDATE accounts SET balance_current = ? WHERE id = ?;`

	createMessagesTable = `
		CREATE TABLE IF NOT EXISTS messages_crdt (
			id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			"row" TEXT NOT NULL,
			"column" TEXT NOT NULL,
			value TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			sent INTEGER NOT NULL DEFAULT 0
		);`

	insertMessage = `
		INSERT INTO messages_crdt (
			id,
			dataset,
			"row",
			"column",
			value,
			timestamp,
			sent
		) VALUES (?, ?, ?, ?, ?, ?, 0);`

	getUnsentMessages = `
		SELECT
			id,
			dataset,
			"row",
			"column",
			value,
			timestamp
		FROM messages_crdt
		WHERE sent = 0
		ORDER BY timestamp;`

	markMessageSent = `
		UPDATE messages_crdt SET sent = 1 WHERE id = ?;`
)
