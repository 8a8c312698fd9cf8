// Package monitor walks every open position once per tick and drives the
// exit state machine: fixed stop and target while ACTIVE, a two-stage
// trailing stop after sufficient favorable excursion, a calendar-day
// holding ceiling, and managed-risk valuation exits for option baskets.
//
// Ticks are idempotent. Stage state is persisted in the ledger so an
// overlapping or restarted run resumes exactly where the last one
// stopped, and a position already closed by a competing run is skipped.
package monitor

import (
	"context"
	"fmt"
	"time"

	"swing-trader/internal/interfaces"
	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/metrics"
	"swing-trader/internal/types"
)

// Exit reasons written to the ledger.
const (
	ReasonStopLoss     = "STOP_LOSS"
	ReasonTarget       = "TARGET"
	ReasonTrailingStop = "TRAILING_STOP"
	ReasonMaxHold      = "MAX_HOLD"
	ReasonExpiry       = "EXPIRY"
)

const (
	breakevenTriggerR = 1.2
	extendedTriggerR  = 2.5
	breakevenBufferR  = 0.1
	extendedLockPct   = 0.5
)

// Config tunes the monitor pass.
type Config struct {
	MaxHoldDays int           // calendar-day ceiling, default 30
	SymbolDelay time.Duration // pause between symbols (provider rate limit)
	DefaultVIX  float64       // volatility proxy when no live value exists
	VIXSymbol   string        // symbol to fetch the volatility proxy from
}

func (c *Config) setDefaults() {
	if c.MaxHoldDays == 0 {
		c.MaxHoldDays = 30
	}
	if c.DefaultVIX == 0 {
		c.DefaultVIX = 15.0
	}
}

var ist = time.FixedZone("IST", 5*3600+1800)

type Monitor struct {
	store    *ledger.Store
	data     interfaces.MarketData
	notifier interfaces.Notifier
	cfg      Config
}

func New(store *ledger.Store, data interfaces.MarketData, notifier interfaces.Notifier, cfg Config) *Monitor {
	cfg.setDefaults()
	return &Monitor{store: store, data: data, notifier: notifier, cfg: cfg}
}

// Tick evaluates every open position once. A single position's failure is
// logged and never aborts the pass.
func (m *Monitor) Tick(ctx context.Context) error {
	open, err := m.store.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("monitor tick: %w", err)
	}
	logger.Info(ctx, "monitor tick", "open_positions", len(open))

	for i, p := range open {
		if i > 0 && m.cfg.SymbolDelay > 0 {
			time.Sleep(m.cfg.SymbolDelay)
		}

		var perr error
		if p.AssetKind == types.OptionBasket {
			perr = m.evalBasket(ctx, p)
		} else {
			perr = m.evalEquity(ctx, p)
		}
		if perr != nil {
			metrics.ScanErrors.Inc()
			logger.ErrorWithErr(ctx, "position evaluation failed", perr,
				"trade_id", p.ID, "symbol", p.Symbol)
		}
	}
	return nil
}

// holdExpired applies the calendar-day ceiling. It fires from any stage:
// a trailing position left over the ceiling is still a stale position.
func (m *Monitor) holdExpired(p *types.Position) bool {
	entry := p.EntryTime.In(ist)
	now := time.Now().In(ist)
	y1, m1, d1 := entry.Date()
	y2, m2, d2 := now.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, ist)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, ist)
	days := int(today.Sub(start).Hours() / 24)
	return days >= m.cfg.MaxHoldDays
}

func (m *Monitor) evalEquity(ctx context.Context, p *types.Position) error {
	price, err := m.data.LTP(ctx, p.Symbol)
	if err != nil {
		return err
	}

	if m.holdExpired(p) {
		return m.close(ctx, p, price, ReasonMaxHold)
	}

	st, err := m.store.TrailState(ctx, p.ID)
	if err != nil {
		return err
	}

	risk := p.Risk()
	if risk <= 0 {
		// Degenerate stored levels; only the hard stop can apply.
		if crossedStop(p.Side, price, p.StopLoss) {
			return m.close(ctx, p, price, ReasonStopLoss)
		}
		return nil
	}

	best := st.BestPrice
	if best == 0 {
		best = p.EntryPrice
	}
	if favorable(p.Side, price, best) {
		best = price
	}
	excursionR := excursion(p.Side, p.EntryPrice, best) / risk

	switch st.Stage {
	case ledger.StageActive:
		if crossedStop(p.Side, price, p.StopLoss) {
			return m.close(ctx, p, price, ReasonStopLoss)
		}
		if crossedTarget(p.Side, price, p.Target) {
			return m.close(ctx, p, price, ReasonTarget)
		}
		if excursionR >= breakevenTriggerR {
			st.Stage = ledger.StageBreakeven
			st.TrailStop = breakevenStop(p.Side, p.EntryPrice, risk)
			st.BestPrice = best
			if err := m.store.SaveTrailState(ctx, st); err != nil {
				return err
			}
			logger.Risk(ctx, p.Symbol, "trail_breakeven",
				"trade_id", p.ID, "trail_stop", st.TrailStop)
			return nil
		}

	case ledger.StageBreakeven:
		if crossedStop(p.Side, price, st.TrailStop) {
			return m.close(ctx, p, price, ReasonTrailingStop)
		}
		if excursionR >= extendedTriggerR {
			st.Stage = ledger.StageExtended
			st.TrailStop = tighter(p.Side, st.TrailStop, lockStop(p.Side, p.EntryPrice, best))
			st.BestPrice = best
			if err := m.store.SaveTrailState(ctx, st); err != nil {
				return err
			}
			logger.Risk(ctx, p.Symbol, "trail_extended",
				"trade_id", p.ID, "trail_stop", st.TrailStop)
			return nil
		}

	case ledger.StageExtended:
		// Keep ratcheting the lock as the best price improves.
		st.TrailStop = tighter(p.Side, st.TrailStop, lockStop(p.Side, p.EntryPrice, best))
		if crossedStop(p.Side, price, st.TrailStop) {
			return m.close(ctx, p, price, ReasonTrailingStop)
		}
	}

	if best != st.BestPrice || st.Stage != ledger.StageActive {
		st.BestPrice = best
		if err := m.store.SaveTrailState(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) close(ctx context.Context, p *types.Position, exitPrice float64, reason string) error {
	pnl, err := m.store.ClosePosition(ctx, p.ID, exitPrice, reason)
	if err != nil {
		return err
	}
	metrics.TradesClosed.WithLabelValues(p.Strategy, reason).Inc()

	emoji := "🟢"
	if pnl < 0 {
		emoji = "🔴"
	}
	m.notifier.Notify(ctx, fmt.Sprintf(
		"%s <b>POSITION CLOSED: %s</b>\nStrategy: %s\nReason: %s\nExit: %.2f\nP&L: %+.2f",
		emoji, p.Symbol, p.Strategy, reason, exitPrice, pnl))
	return nil
}

// crossedStop reports whether price has crossed a stop level against the
// position.
func crossedStop(side types.Action, price, stop float64) bool {
	if stop <= 0 {
		return false
	}
	if side == types.Sell {
		return price >= stop
	}
	return price <= stop
}

func crossedTarget(side types.Action, price, target float64) bool {
	if target <= 0 {
		return false
	}
	if side == types.Sell {
		return price <= target
	}
	return price >= target
}

func favorable(side types.Action, price, best float64) bool {
	if side == types.Sell {
		return price < best
	}
	return price > best
}

func excursion(side types.Action, entry, best float64) float64 {
	if side == types.Sell {
		return entry - best
	}
	return best - entry
}

func breakevenStop(side types.Action, entry, risk float64) float64 {
	if side == types.Sell {
		return entry - risk*breakevenBufferR
	}
	return entry + risk*breakevenBufferR
}

// lockStop pins the stop at half of the favorable move from entry.
func lockStop(side types.Action, entry, best float64) float64 {
	move := excursion(side, entry, best)
	if side == types.Sell {
		return entry - move*extendedLockPct
	}
	return entry + move*extendedLockPct
}

// tighter keeps whichever stop gives up less of the move.
func tighter(side types.Action, a, b float64) float64 {
	if side == types.Sell {
		if b < a {
			return b
		}
		return a
	}
	if b > a {
		return b
	}
	return a
}
