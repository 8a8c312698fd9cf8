package monitor

import (
	"context"
	"fmt"
	"time"

	"swing-trader/internal/logger"
	"swing-trader/internal/options"
	"swing-trader/internal/types"
)

// indexConfigs maps basket symbols to their contract geometry.
var indexConfigs = map[string]options.IndexConfig{
	options.Nifty.Symbol:     options.Nifty,
	options.BankNifty.Symbol: options.BankNifty,
}

// evalBasket re-prices an option basket from its persisted template,
// anchor strike and expiry, then applies the managed-risk exit rules.
// Baskets never use price-level stops: no live per-leg quote exists.
func (m *Monitor) evalBasket(ctx context.Context, p *types.Position) error {
	template, ok := options.TemplateOf(p.Strategy)
	if !ok {
		return fmt.Errorf("trade %d: not an options strategy: %s", p.ID, p.Strategy)
	}
	cfg, ok := indexConfigs[p.Symbol]
	if !ok {
		return fmt.Errorf("trade %d: no index config for %s", p.ID, p.Symbol)
	}

	spot, err := m.data.LTP(ctx, p.Symbol)
	if err != nil {
		return err
	}
	vix := m.fetchVIX(ctx)

	daysToExpiry := int(time.Until(p.ExpiryDate).Hours() / 24)
	netNow := options.Value(template, cfg, p.StrikePrice, spot, vix, daysToExpiry,
		options.SyntheticPricer{})

	units := float64(p.Quantity)
	netEntryTotal := p.EntryPrice * units
	pnlTotal := options.UnrealizedPnL(p.EntryPrice, netNow) * units

	decision := options.CheckExit(netEntryTotal, pnlTotal, p.ExpiryDate, time.Now())
	if !decision.Exit {
		if m.holdExpired(p) {
			decision = options.ExitDecision{Exit: true, Reason: ReasonMaxHold}
		}
	}
	if !decision.Exit {
		logger.Debug(ctx, "basket holding",
			"trade_id", p.ID, "symbol", p.Symbol, "unrealized_pnl", pnlTotal)
		return nil
	}

	// Closing at the current net premium keeps the ledger's basket P&L
	// formula exact: (entry - exit) x qty.
	_, err = m.store.ClosePosition(ctx, p.ID, netNow, decision.Reason)
	if err != nil {
		return err
	}
	m.notifier.Notify(ctx, fmt.Sprintf(
		"🦅 <b>BASKET CLOSED: %s</b>\nTemplate: %s\nReason: %s\nP&L: %+.2f",
		p.Symbol, template, decision.Reason, pnlTotal))
	return nil
}

// fetchVIX reads the volatility proxy, falling back to the configured
// default when the quote is unavailable.
func (m *Monitor) fetchVIX(ctx context.Context) float64 {
	if m.cfg.VIXSymbol == "" {
		return m.cfg.DefaultVIX
	}
	vix, err := m.data.LTP(ctx, m.cfg.VIXSymbol)
	if err != nil || vix <= 0 {
		logger.Warn(ctx, "vix fetch failed, using default", "default", m.cfg.DefaultVIX)
		return m.cfg.DefaultVIX
	}
	return vix
}
