// Package strategy turns an OHLCV series into a ranked trade decision.
// Evaluators are stateless: each maps (symbol, indicator bundle) to a
// Signal, and the dispatcher picks the single best one per scan.
package strategy

import (
	"math"

	"swing-trader/internal/types"
)

// Evaluator scores one setup family against the indicator bundle.
// Implementations must be pure: identical input yields an identical
// Signal, including stop and target levels.
type Evaluator interface {
	Name() string
	Evaluate(symbol string, ind *types.Indicators) types.Signal
}

// hold builds the standard non-actionable signal.
func hold(symbol, strategy, reason string) types.Signal {
	return types.Signal{
		Symbol:   symbol,
		Strategy: strategy,
		Action:   types.Hold,
		Reasons:  []string{reason},
	}
}

// preFilter applies the shared entry gates. A hard failure rejects the
// setup outright; soft conditions accumulate a confidence penalty.
func preFilter(ind *types.Indicators) (pass bool, penalty float64, reasons []string) {
	if ind.VolumeRatio < 1.0 {
		return false, 0, []string{"volume below average"}
	}
	if ind.VolumeRatio < 1.2 {
		penalty += 0.15
		reasons = append(reasons, "marginally above-avg volume")
	}

	// A day range beyond 2.5x ATR is treated as a news-driven outlier.
	if ind.High-ind.Low > ind.ATR*2.5 {
		return false, 0, []string{"abnormal volatility, likely news-driven"}
	}

	if math.Abs(ind.Close-ind.Open) < ind.ATR*0.2 {
		penalty += 0.15
		reasons = append(reasons, "weak candle body")
	}
	return true, penalty, reasons
}

// swingStop places a stop beyond the recent swing structure with a 1.5x
// ATR buffer, never tighter than 2x ATR from the close.
func swingStop(ind *types.Indicators, action types.Action) float64 {
	buffer := ind.ATR * 1.5
	if action == types.Buy {
		return math.Min(ind.SwingLow-buffer, ind.Close-ind.ATR*2)
	}
	return math.Max(ind.SwingHigh+buffer, ind.Close+ind.ATR*2)
}

func rrTarget(entry, stop float64, action types.Action, rr float64) float64 {
	risk := math.Abs(entry - stop)
	if action == types.Buy {
		return entry + risk*rr
	}
	return entry - risk*rr
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1.0)
}

// finish applies the activation threshold: below it the evaluator emits
// HOLD with confidence 0 and keeps the scoring trail as the reason.
func finish(sig types.Signal, score, threshold float64) types.Signal {
	sig.Confidence = clamp01(score)
	if sig.Action == types.Hold || sig.Confidence < threshold {
		sig.Action = types.Hold
		sig.Confidence = 0
		if len(sig.Reasons) == 0 {
			sig.Reasons = []string{"no trigger"}
		}
		sig.Entry, sig.StopLoss, sig.Target = 0, 0, 0
	}
	return sig
}

func bodyRatio(ind *types.Indicators) float64 {
	rng := ind.High - ind.Low
	if rng <= 0 {
		return 0
	}
	return math.Abs(ind.Close-ind.Open) / rng
}
