package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TrailStage is the monitor's persisted exit-machine stage for an open
// trade. The trades schema stays untouched; stages live in their own
// table so overlapping monitor runs resume where the last one stopped.
type TrailStage string

const (
	StageActive    TrailStage = "ACTIVE"
	StageBreakeven TrailStage = "TRAILING_TO_BREAKEVEN"
	StageExtended  TrailStage = "TRAILING_EXTENDED"
)

// TrailState is the persisted trailing-stop state of one open trade.
type TrailState struct {
	TradeID   int64
	Stage     TrailStage
	TrailStop float64
	BestPrice float64
	UpdatedAt time.Time
}

// TrailState loads the stage row for a trade. A missing row means the
// trade is still in the initial ACTIVE stage.
func (s *Store) TrailState(ctx context.Context, tradeID int64) (TrailState, error) {
	st := TrailState{TradeID: tradeID, Stage: StageActive}
	err := s.db.QueryRowContext(ctx, `
        SELECT stage, trail_stop, best_price, updated_at
        FROM position_state WHERE trade_id = ?`, tradeID).
		Scan(&st.Stage, &st.TrailStop, &st.BestPrice, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("trail state %d: %w", tradeID, err)
	}
	return st, nil
}

// SaveTrailState upserts the stage row for a trade.
func (s *Store) SaveTrailState(ctx context.Context, st TrailState) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO position_state (trade_id, stage, trail_stop, best_price, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(trade_id) DO UPDATE SET
            stage = excluded.stage,
            trail_stop = excluded.trail_stop,
            best_price = excluded.best_price,
            updated_at = excluded.updated_at`,
		st.TradeID, st.Stage, st.TrailStop, st.BestPrice, time.Now())
	if err != nil {
		return fmt.Errorf("save trail state %d: %w", st.TradeID, err)
	}
	return nil
}
