// Package options builds, prices and risk-manages multi-leg index option
// baskets. No live per-leg quotes exist in this system, so a synthetic
// pricer estimates every premium from spot, strike distance, time to
// expiry and a volatility proxy; exits are managed on basket value, not
// price levels.
package options

import (
	"math"

	"swing-trader/internal/types"
)

// Pricer estimates a single option premium.
type Pricer interface {
	Premium(spot, strike float64, kind types.OptionKind, daysToExpiry int, vix float64) float64
}

// SyntheticPricer is a heuristic premium model: intrinsic value plus an
// extrinsic component that is linear in spot and the VIX ratio, follows a
// square-root-of-time rule, and decays exponentially with distance from
// spot. An ATM weekly option at VIX 15 prices near 1% of spot.
type SyntheticPricer struct{}

const (
	baselineVIX    = 15.0
	atmPremiumRate = 0.010
	moneynessDecay = 20.0
	premiumFloor   = 0.5
)

func (SyntheticPricer) Premium(spot, strike float64, kind types.OptionKind, daysToExpiry int, vix float64) float64 {
	vixFactor := vix / baselineVIX

	timeFactor := 0.05
	if daysToExpiry > 0 {
		d := daysToExpiry
		if d < 1 {
			d = 1
		}
		timeFactor = math.Sqrt(float64(d) / 5)
	}

	atmPremium := spot * atmPremiumRate * vixFactor * timeFactor
	distancePct := math.Abs(strike-spot) / spot
	extrinsic := atmPremium * math.Exp(-distancePct*moneynessDecay)

	intrinsic := 0.0
	if kind == types.Call {
		intrinsic = math.Max(0, spot-strike)
	} else {
		intrinsic = math.Max(0, strike-spot)
	}

	return math.Max(premiumFloor, intrinsic+extrinsic)
}
