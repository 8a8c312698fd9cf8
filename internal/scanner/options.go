package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/metrics"
	"swing-trader/internal/options"
	"swing-trader/internal/strategy"
	"swing-trader/internal/types"
)

var indexConfigs = map[string]options.IndexConfig{
	options.Nifty.Symbol:     options.Nifty,
	options.BankNifty.Symbol: options.BankNifty,
}

// RunOptions scans the configured indices for multi-leg basket setups.
// Baskets are paper positions only; no leg orders leave the system.
func (s *Scanner) RunOptions(ctx context.Context) error {
	if !s.cfg.Options.Enabled {
		return nil
	}

	vix := s.fetchVIX(ctx)
	expiry := nextWeeklyExpiry(time.Now())

	for i, symbol := range s.cfg.Options.Indices {
		if i > 0 {
			time.Sleep(s.cfg.SymbolDelay())
		}
		cfg, ok := indexConfigs[symbol]
		if !ok {
			logger.Warn(ctx, "unknown index, skipping", "symbol", symbol)
			continue
		}
		if err := s.scanIndex(ctx, cfg, vix, expiry); err != nil {
			metrics.ScanErrors.Inc()
			logger.ErrorWithErr(ctx, "index scan failed", err, "symbol", symbol)
		}
	}
	return nil
}

func (s *Scanner) scanIndex(ctx context.Context, cfg options.IndexConfig, vix float64, expiry time.Time) error {
	candles, err := s.data.DailyCandles(ctx, cfg.Symbol, 80)
	if err != nil {
		return err
	}
	ind, err := strategy.ComputeIndicators(candles)
	if err != nil {
		if errors.Is(err, strategy.ErrInsufficientData) {
			return nil
		}
		return err
	}

	spot, err := s.data.LTP(ctx, cfg.Symbol)
	if err != nil || spot <= 0 {
		spot = ind.Close
	}

	sig := options.Evaluate(cfg, ind, spot, vix, expiry, options.SyntheticPricer{})
	if sig.Action == types.Hold || sig.Options == nil {
		return nil
	}

	dup, err := s.ledger.HasOpen(ctx, sig.Symbol, sig.Strategy)
	if err != nil {
		return err
	}
	if dup {
		logger.Info(ctx, "basket already open", "symbol", sig.Symbol, "strategy", sig.Strategy)
		return nil
	}

	wallet, err := s.ledger.EnsureWallet(ctx, sig.Strategy)
	if err != nil {
		return err
	}
	setup := sig.Options
	lots := options.Lots(wallet.AvailableBalance, options.MarginPerLot(cfg, setup.NetPremium))
	if lots == 0 {
		logger.Warn(ctx, "basket unaffordable", "symbol", sig.Symbol,
			"balance", wallet.AvailableBalance)
		return nil
	}

	pos := &types.Position{
		Symbol:      sig.Symbol,
		Strategy:    sig.Strategy,
		Side:        sig.Action,
		AssetKind:   types.OptionBasket,
		EntryPrice:  setup.NetPremium,
		Quantity:    lots * setup.LotSize,
		EntryTime:   time.Now(),
		StrikePrice: setup.AnchorStrike,
		ExpiryDate:  setup.Expiry,
	}
	id, err := s.ledger.OpenPosition(ctx, pos)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) || errors.Is(err, ledger.ErrDuplicatePosition) {
			logger.Warn(ctx, "basket not opened", "symbol", sig.Symbol, "error", err.Error())
			return nil
		}
		return err
	}
	metrics.TradesOpened.WithLabelValues(sig.Strategy).Inc()

	legs := ""
	for _, l := range setup.Legs {
		legs += fmt.Sprintf("%s %.0f %s @ %.2f\n", l.Side, l.Strike, l.Kind, l.Premium)
	}
	s.notifier.Notify(ctx, fmt.Sprintf(
		"🦅 <b>NEW OPTIONS TRADE: %s</b>\nTemplate: %s\nSpot: %.0f | VIX: %.2f\n%s\nNet: %+.2f | Lots: %d\nExpiry: %s",
		sig.Symbol, setup.Template, spot, vix, legs, setup.NetPremium, lots,
		setup.Expiry.Format("2006-01-02")))
	logger.Info(ctx, "basket opened", "trade_id", id, "symbol", sig.Symbol,
		"template", setup.Template, "net_premium", setup.NetPremium, "lots", lots)
	return nil
}

func (s *Scanner) fetchVIX(ctx context.Context) float64 {
	if s.cfg.Options.VIXSymbol == "" {
		return s.cfg.Options.DefaultVIX
	}
	vix, err := s.data.LTP(ctx, s.cfg.Options.VIXSymbol)
	if err != nil || vix <= 0 {
		return s.cfg.Options.DefaultVIX
	}
	return vix
}

// nextWeeklyExpiry returns the next Thursday strictly after `from`,
// the standard NSE weekly index expiry.
func nextWeeklyExpiry(from time.Time) time.Time {
	d := from
	for {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Thursday {
			return time.Date(d.Year(), d.Month(), d.Day(), 15, 30, 0, 0, d.Location())
		}
	}
}
