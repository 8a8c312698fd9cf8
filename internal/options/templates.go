package options

import (
	"math"
	"time"

	"swing-trader/internal/types"
)

// IndexConfig holds the per-index contract geometry.
type IndexConfig struct {
	Symbol    string
	LotSize   int
	WingDist  float64 // short-strike distance from spot (condors)
	Width     float64 // spread width / wing width
	StrikeGap float64 // strike rounding interval
}

// Standard index geometries.
var (
	Nifty     = IndexConfig{Symbol: "NIFTY", LotSize: 25, WingDist: 500, Width: 200, StrikeGap: 50}
	BankNifty = IndexConfig{Symbol: "BANKNIFTY", LotSize: 15, WingDist: 1000, Width: 500, StrikeGap: 100}
)

// Template names. They are persisted with the trade, so the monitor can
// rebuild the exact leg set from the anchor strike alone.
const (
	TemplateIronCondor     = "IRON_CONDOR"
	TemplateBullCallSpread = "BULL_CALL_SPREAD"
	TemplateBearPutSpread  = "BEAR_PUT_SPREAD"
)

// AnchorStrike rounds spot to the nearest tradeable strike.
func (c IndexConfig) AnchorStrike(spot float64) float64 {
	return math.Round(spot/c.StrikeGap) * c.StrikeGap
}

// BuildLegs reconstructs a template's legs from its anchor strike and
// prices each leg. The same function serves entry (anchor from current
// spot) and live valuation (anchor from the stored strike).
func BuildLegs(template string, cfg IndexConfig, anchor, spot, vix float64, daysToExpiry int, pricer Pricer) []types.OptionLeg {
	price := func(strike float64, kind types.OptionKind) float64 {
		return pricer.Premium(spot, strike, kind, daysToExpiry, vix)
	}

	switch template {
	case TemplateIronCondor:
		sc := anchor + cfg.WingDist
		sp := anchor - cfg.WingDist
		lc := sc + cfg.Width
		lp := sp - cfg.Width
		return []types.OptionLeg{
			{Strike: sc, Kind: types.Call, Side: types.Sell, Premium: price(sc, types.Call)},
			{Strike: sp, Kind: types.Put, Side: types.Sell, Premium: price(sp, types.Put)},
			{Strike: lc, Kind: types.Call, Side: types.Buy, Premium: price(lc, types.Call)},
			{Strike: lp, Kind: types.Put, Side: types.Buy, Premium: price(lp, types.Put)},
		}
	case TemplateBullCallSpread:
		sc := anchor + cfg.Width
		return []types.OptionLeg{
			{Strike: anchor, Kind: types.Call, Side: types.Buy, Premium: price(anchor, types.Call)},
			{Strike: sc, Kind: types.Call, Side: types.Sell, Premium: price(sc, types.Call)},
		}
	case TemplateBearPutSpread:
		sp := anchor - cfg.Width
		return []types.OptionLeg{
			{Strike: anchor, Kind: types.Put, Side: types.Buy, Premium: price(anchor, types.Put)},
			{Strike: sp, Kind: types.Put, Side: types.Sell, Premium: price(sp, types.Put)},
		}
	}
	return nil
}

// NetPremium is the signed per-unit cash flow of a leg set: sold legs
// collect premium, bought legs pay it. Positive = net credit.
func NetPremium(legs []types.OptionLeg) float64 {
	net := 0.0
	for _, l := range legs {
		if l.Side == types.Sell {
			net += l.Premium
		} else {
			net -= l.Premium
		}
	}
	return net
}

// Setup assembles the full basket payload for a signal.
func Setup(template string, cfg IndexConfig, spot, vix float64, expiry time.Time, daysToExpiry int, pricer Pricer) *types.OptionSetup {
	anchor := cfg.AnchorStrike(spot)
	legs := BuildLegs(template, cfg, anchor, spot, vix, daysToExpiry, pricer)
	if legs == nil {
		return nil
	}
	return &types.OptionSetup{
		Template:     template,
		AnchorStrike: anchor,
		Expiry:       expiry,
		LotSize:      cfg.LotSize,
		Legs:         legs,
		NetPremium:   NetPremium(legs),
	}
}
