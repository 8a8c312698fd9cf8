package ledger

import (
	"context"
	"fmt"
	"time"

	"swing-trader/internal/logger"
	"swing-trader/internal/types"
)

// Reconcile rebuilds every strategy wallet by replaying the trades table
// from the base allocation: every trade debits its entry cost, every
// closed trade credits its exit value. It returns the resulting balances.
//
// This is the recovery path when wallet rows are suspected to have
// drifted from the trade history (crashed runs, manual edits).
func (s *Store) Reconcile(ctx context.Context) (map[string]float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT strategy FROM trades WHERE strategy IS NOT NULL AND strategy != ''`)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	var strategies []string
	for rows.Next() {
		var strat string
		if err := rows.Scan(&strat); err != nil {
			rows.Close()
			return nil, err
		}
		strategies = append(strategies, strat)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	for _, strat := range strategies {
		// Keep an existing allocation; seed absent wallets at the default.
		_, err := tx.ExecContext(ctx, `
            INSERT INTO strategy_wallets (strategy, allocation, available_balance, updated_at)
            VALUES (?, ?, ?, ?)
            ON CONFLICT(strategy) DO UPDATE SET
                available_balance = allocation,
                updated_at = excluded.updated_at`,
			strat, DefaultAllocation, DefaultAllocation, now)
		if err != nil {
			return nil, fmt.Errorf("reconcile reset %s: %w", strat, err)
		}
	}

	trows, err := tx.QueryContext(ctx, `
        SELECT strategy, entry_price, quantity, status, exit_price
        FROM trades WHERE strategy IS NOT NULL AND strategy != ''`)
	if err != nil {
		return nil, fmt.Errorf("reconcile replay: %w", err)
	}
	type replay struct {
		strategy string
		delta    float64
	}
	var deltas []replay
	for trows.Next() {
		var (
			strat     string
			entry     float64
			qty       int
			status    types.Status
			exitPrice *float64
		)
		if err := trows.Scan(&strat, &entry, &qty, &status, &exitPrice); err != nil {
			trows.Close()
			return nil, err
		}
		delta := -entry * float64(qty)
		if status == types.StatusClosed && exitPrice != nil {
			delta += *exitPrice * float64(qty)
		}
		deltas = append(deltas, replay{strat, delta})
	}
	trows.Close()
	if err := trows.Err(); err != nil {
		return nil, err
	}

	for _, d := range deltas {
		if err := adjustBalance(ctx, tx, d.strategy, d.delta); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	balances := make(map[string]float64, len(strategies))
	for _, strat := range strategies {
		w, err := s.Wallet(ctx, strat)
		if err != nil {
			return nil, err
		}
		balances[strat] = w.AvailableBalance
		logger.Info(ctx, "wallet reconciled", "strategy", strat, "balance", w.AvailableBalance)
	}
	return balances, nil
}
