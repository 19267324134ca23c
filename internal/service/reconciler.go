// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"context"

	"github.com/MRudenko/go-budget-sync/internal/ledger"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/models"
)

// accountsTable and balanceField name the row and field the reconciler
// re-writes through the conflict-free path.
const (
	accountsTable = "accounts"
	balanceField  = "balance_current"
)

type balanceReconciler struct {
	client ledger.Client
	log    *logger.Logger
}

// NewBalanceReconciler creates the reconciler that repairs balances written
// by the bank sync through the direct path.
func NewBalanceReconciler(client ledger.Client, log *logger.Logger) BalanceReconciler {
	return &balanceReconciler{client: client, log: log}
}

func (r *balanceReconciler) Reconcile(ctx context.Context, session models.Session) bool {
	accounts, err := r.client.Accounts(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("sessionID", session.ID).
			Msg("balance reconciliation skipped: cannot read accounts")
		return false
	}

	complete := true
	repaired := 0
	for _, account := range accounts {
		// Accounts without a materialized balance have nothing to repair.
		if account.BalanceCurrent == nil {
			continue
		}

		fields := map[string]any{balanceField: *account.BalanceCurrent}
		if err := r.client.ApplyUpdate(ctx, accountsTable, account.ID, fields); err != nil {
			r.log.Warn().Err(err).Str("accountID", account.ID).
				Msg("balance re-write failed")
			complete = false
			continue
		}
		repaired++
	}

	r.log.Debug().Int("accounts", len(accounts)).Int("repaired", repaired).
		Str("sessionID", session.ID).Msg("balance reconciliation finished")

	return complete
}
