package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"swing-trader/internal/logger"
	"swing-trader/internal/types"
)

// Repair reverts an erroneously closed trade back to OPEN: the exit
// fields are cleared and the exit value the close credited is debited
// from the strategy wallet again. The trade must currently be CLOSED.
func (s *Store) Repair(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repair: %w", err)
	}
	defer tx.Rollback()

	var (
		symbol    string
		strategy  string
		qty       int
		status    types.Status
		exitPrice sql.NullFloat64
	)
	err = tx.QueryRowContext(ctx, `
        SELECT symbol, strategy, quantity, status, exit_price
        FROM trades WHERE id = ?`, id).
		Scan(&symbol, &strategy, &qty, &status, &exitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("trade %d: %w", id, ErrPositionNotFound)
	}
	if err != nil {
		return err
	}
	if status != types.StatusClosed {
		return fmt.Errorf("trade %d: %w", id, ErrPositionNotClosed)
	}

	if exitPrice.Valid {
		credit := exitPrice.Float64 * float64(qty)
		if err := adjustBalance(ctx, tx, strategy, -credit); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE trades
        SET status = ?, exit_price = NULL, exit_time = NULL,
            realized_pnl = NULL, exit_reason = NULL
        WHERE id = ?`, types.StatusOpen, id)
	if err != nil {
		return fmt.Errorf("repair trade %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repair: %w", err)
	}
	logger.Info(ctx, "trade reverted to open",
		"trade_id", id, "symbol", symbol, "strategy", strategy)
	return nil
}
