// Package scanner runs one scan pass over the watchlist: fetch candles,
// dispatch the evaluator suite, gate the winning signal through
// freshness, duplicate and slot checks, size it against the strategy
// wallet and open the position. Symbols are processed strictly
// sequentially with an inter-symbol delay; the upstream data provider
// rate-limits aggressively and a scan pass is not latency-sensitive.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swing-trader/internal/interfaces"
	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/marketdata"
	"swing-trader/internal/metrics"
	"swing-trader/internal/risk"
	"swing-trader/internal/store"
	"swing-trader/internal/strategy"
	"swing-trader/internal/tradelog"
	"swing-trader/internal/types"
)

type Scanner struct {
	cfg        *store.Config
	data       interfaces.MarketData
	broker     interfaces.Broker
	ledger     *ledger.Store
	dispatcher *strategy.Dispatcher
	notifier   interfaces.Notifier
}

func New(cfg *store.Config, data interfaces.MarketData, broker interfaces.Broker,
	led *ledger.Store, disp *strategy.Dispatcher, notifier interfaces.Notifier) *Scanner {
	return &Scanner{
		cfg:        cfg,
		data:       data,
		broker:     broker,
		ledger:     led,
		dispatcher: disp,
		notifier:   notifier,
	}
}

// Run executes one pass over the watchlist. A single symbol's failure is
// recovered and never aborts the batch. The pass stops opening new
// positions once the per-pass order cap is hit, but keeps journaling
// decisions for the remaining symbols.
func (s *Scanner) Run(ctx context.Context) error {
	opened := 0
	logger.Info(ctx, "scan pass starting",
		"symbols", len(s.cfg.Watchlist), "order_cap", s.cfg.Scan.MaxOrdersPerPass)

	for i, symbol := range s.cfg.Watchlist {
		if i > 0 {
			time.Sleep(s.cfg.SymbolDelay())
		}

		placed, err := s.scanSymbol(ctx, symbol, opened)
		if err != nil {
			metrics.ScanErrors.Inc()
			logger.ErrorWithErr(ctx, "symbol scan failed", err, "symbol", symbol)
			continue
		}
		if placed {
			opened++
		}
	}

	logger.Info(ctx, "scan pass complete", "orders_opened", opened)
	return nil
}

func (s *Scanner) scanSymbol(ctx context.Context, symbol string, opened int) (bool, error) {
	candles, err := s.data.DailyCandles(ctx, symbol, s.cfg.Scan.LookbackDays)
	if err != nil {
		if errors.Is(err, marketdata.ErrDataUnavailable) {
			logger.Warn(ctx, "no data, skipping symbol", "symbol", symbol)
			return false, nil
		}
		return false, err
	}

	// Stale series means the symbol stopped trading or the feed is
	// behind; acting on it would price the trade off old levels.
	if stale := s.staleness(candles); stale > s.cfg.Scan.FreshnessDays {
		logger.Warn(ctx, "stale candles, skipping symbol",
			"symbol", symbol, "days_stale", stale)
		return false, nil
	}

	ind, err := strategy.ComputeIndicators(candles)
	if err != nil {
		if errors.Is(err, strategy.ErrInsufficientData) {
			logger.Debug(ctx, "insufficient history", "symbol", symbol, "bars", len(candles))
			return false, nil
		}
		return false, err
	}

	sig := s.dispatcher.Dispatch(symbol, ind)
	s.journalDecision(sig, ind)
	if sig.Action == types.Hold {
		return false, nil
	}
	metrics.SignalsEmitted.WithLabelValues(sig.Strategy).Inc()
	logger.Decision(ctx, symbol, string(sig.Action), sig.Confidence,
		firstReason(sig.Reasons), "strategy", sig.Strategy)

	if opened >= s.cfg.Scan.MaxOrdersPerPass {
		logger.Info(ctx, "order cap reached, signal not executed",
			"symbol", symbol, "strategy", sig.Strategy)
		return false, nil
	}

	return s.execute(ctx, sig)
}

// execute gates and opens a sized position for an actionable signal.
func (s *Scanner) execute(ctx context.Context, sig types.Signal) (bool, error) {
	dup, err := s.ledger.HasOpen(ctx, sig.Symbol, sig.Strategy)
	if err != nil {
		return false, err
	}
	if dup {
		// Defined as a no-op on the ledger: the position keeps its
		// original levels, the signal only confirms the thesis.
		logger.Info(ctx, "duplicate signal for open position",
			"symbol", sig.Symbol, "strategy", sig.Strategy)
		s.notifier.Notify(ctx, fmt.Sprintf(
			"🔄 <b>REFRESH: %s</b>\n%s re-signalled %s (conf %.2f); position already open, no action.",
			sig.Symbol, sig.Strategy, sig.Action, sig.Confidence))
		return false, nil
	}

	slots, err := s.ledger.CountOpenByStrategy(ctx, sig.Strategy)
	if err != nil {
		return false, err
	}
	if slots >= s.cfg.Scan.MaxSlotsPerFamily {
		logger.Info(ctx, "strategy slots full",
			"strategy", sig.Strategy, "open", slots, "max", s.cfg.Scan.MaxSlotsPerFamily)
		return false, nil
	}

	wallet, err := s.ledger.EnsureWallet(ctx, sig.Strategy)
	if err != nil {
		return false, err
	}

	qty, err := risk.Quantity(sig.Entry, sig.StopLoss, wallet.AvailableBalance,
		s.cfg.Scan.MaxRiskPct/100)
	if err != nil {
		if errors.Is(err, risk.ErrDegenerateRisk) {
			logger.Warn(ctx, "degenerate risk, not sizing",
				"symbol", sig.Symbol, "entry", sig.Entry, "stop", sig.StopLoss)
			return false, nil
		}
		return false, err
	}

	pos := &types.Position{
		Symbol:     sig.Symbol,
		Strategy:   sig.Strategy,
		Side:       sig.Action,
		AssetKind:  types.Equity,
		EntryPrice: sig.Entry,
		Quantity:   qty,
		EntryTime:  time.Now(),
		StopLoss:   sig.StopLoss,
		Target:     sig.Target,
	}
	id, err := s.ledger.OpenPosition(ctx, pos)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) || errors.Is(err, ledger.ErrDuplicatePosition) {
			logger.Warn(ctx, "position not opened", "symbol", sig.Symbol, "error", err.Error())
			return false, nil
		}
		return false, err
	}
	metrics.TradesOpened.WithLabelValues(sig.Strategy).Inc()

	resp, err := s.broker.PlaceOrder(ctx, types.OrderReq{
		Symbol: sig.Symbol,
		Side:   sig.Action,
		Qty:    qty,
		Price:  sig.Entry,
		Tag:    sig.Strategy,
	})
	if err != nil {
		// The paper position stands; execution failure is surfaced, not
		// silently retried.
		logger.ErrorWithErr(ctx, "order placement failed", err,
			"symbol", sig.Symbol, "trade_id", id)
		s.notifier.Notify(ctx, fmt.Sprintf(
			"⚠️ <b>EXECUTION FAILURE: %s</b>\n%s", sig.Symbol, err.Error()))
		return true, nil
	}

	logger.Trade(ctx, sig.Symbol, string(sig.Action), qty, sig.Entry, resp.OrderID,
		"strategy", sig.Strategy, "trade_id", id)
	_ = tradelog.Append(tradelog.Entry{
		Symbol:     sig.Symbol,
		Strategy:   sig.Strategy,
		Side:       string(sig.Action),
		Qty:        qty,
		Price:      sig.Entry,
		OrderID:    resp.OrderID,
		Reason:     firstReason(sig.Reasons),
		Confidence: sig.Confidence,
	})
	s.notifier.Notify(ctx, fmt.Sprintf(
		"🆕 <b>TRADE EXECUTED</b>\n\n🟢 %s %s\nStrategy: %s\nQty: %d\nPrice: %.2f\nSL: %.2f\nTP: %.2f",
		sig.Action, sig.Symbol, sig.Strategy, qty, sig.Entry, sig.StopLoss, sig.Target))
	return true, nil
}

// staleness returns how many calendar days old the latest bar is.
func (s *Scanner) staleness(candles []types.Candle) int {
	if len(candles) == 0 {
		return 1 << 20
	}
	last := time.Unix(candles[len(candles)-1].Ts, 0)
	return int(time.Since(last).Hours() / 24)
}

func (s *Scanner) journalDecision(sig types.Signal, ind *types.Indicators) {
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Symbol:     sig.Symbol,
		Strategy:   sig.Strategy,
		Action:     string(sig.Action),
		Reason:     firstReason(sig.Reasons),
		Confidence: sig.Confidence,
		Price:      ind.Close,
		Indicators: map[string]float64{
			"rsi":          ind.RSI,
			"atr":          ind.ATR,
			"ema20":        ind.EMA20,
			"ema50":        ind.EMA50,
			"volume_ratio": ind.VolumeRatio,
		},
	})
}

func firstReason(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	return reasons[0]
}
