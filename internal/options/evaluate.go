package options

import (
	"math"
	"time"

	"swing-trader/internal/types"
)

// StrategyPrefix tags option basket trades in the ledger. The template
// is appended (e.g. SWING_OPTIONS_IRON_CONDOR) so the monitor can rebuild
// the exact leg set from persisted fields alone.
const StrategyPrefix = "SWING_OPTIONS"

// StrategyFor returns the ledger strategy id for a template.
func StrategyFor(template string) string {
	return StrategyPrefix + "_" + template
}

// TemplateOf extracts the template from a ledger strategy id.
func TemplateOf(strategy string) (string, bool) {
	if len(strategy) <= len(StrategyPrefix)+1 ||
		strategy[:len(StrategyPrefix)+1] != StrategyPrefix+"_" {
		return "", false
	}
	return strategy[len(StrategyPrefix)+1:], true
}

const optionsConfidence = 0.8

// Evaluate selects a leg template from the index's indicator state and
// expands it into a full basket signal. A range-bound reading maps to an
// iron condor, a directional one to the matching vertical spread.
func Evaluate(cfg IndexConfig, ind *types.Indicators, spot, vix float64, expiry time.Time, pricer Pricer) types.Signal {
	sig := types.Signal{
		Symbol:   cfg.Symbol,
		Strategy: StrategyPrefix,
		Action:   types.Hold,
	}

	distEMA20 := math.Abs(ind.Close-ind.EMA20) / ind.Close

	var template string
	switch {
	case ind.RSI >= 40 && ind.RSI <= 60 && distEMA20 < 0.015:
		template = TemplateIronCondor
		sig.Reasons = append(sig.Reasons, "range-bound: RSI neutral, price pinned to EMA20")
	case ind.Close > ind.EMA20 && ind.EMA20 > ind.EMA50 && ind.RSI > 55 && ind.RSI < 70:
		template = TemplateBullCallSpread
		sig.Reasons = append(sig.Reasons, "bullish structure above EMA20/50")
	case ind.Close < ind.EMA20 && ind.EMA20 < ind.EMA50 && ind.RSI > 30 && ind.RSI < 45:
		template = TemplateBearPutSpread
		sig.Reasons = append(sig.Reasons, "bearish structure below EMA20/50")
	default:
		sig.Reasons = append(sig.Reasons, "no basket setup")
		return sig
	}

	daysToExpiry := int(time.Until(expiry).Hours() / 24)
	setup := Setup(template, cfg, spot, vix, expiry, daysToExpiry, pricer)
	if setup == nil {
		sig.Reasons = append(sig.Reasons, "no basket setup")
		return sig
	}

	sig.Strategy = StrategyFor(template)
	sig.Action = types.Buy
	if setup.NetPremium > 0 {
		sig.Action = types.Sell
	}
	sig.Confidence = optionsConfidence
	sig.Entry = setup.NetPremium
	sig.Options = setup
	return sig
}
