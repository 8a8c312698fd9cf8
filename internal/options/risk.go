package options

import (
	"math"
	"time"
)

const (
	// capitalFraction is the share of strategy capital one basket targets.
	capitalFraction = 0.30

	minLots = 1
	maxLots = 10

	// Managed-risk exit parameters. Credit baskets stop when the loss
	// reaches twice the collected credit and take profit at half of it;
	// debit baskets stop at half the paid debit and target 1.5x.
	creditStopMult  = 2.0
	creditTargetPct = 0.5
	debitStopPct    = 0.5
	debitTargetMult = 1.5

	// expiryExitDays closes any basket this close to expiry.
	expiryExitDays = 1
)

// Lots sizes a basket against the strategy's capital: a fixed fraction
// of capital divided by the per-lot margin estimate, clamped to [1,10].
func Lots(capital, marginPerLot float64) int {
	if marginPerLot <= 0 || capital <= 0 {
		return 0
	}
	lots := int(capital * capitalFraction / marginPerLot)
	if lots < minLots {
		lots = minLots
	}
	if lots > maxLots {
		lots = maxLots
	}
	return lots
}

// MarginPerLot estimates the capital one lot reserves. Defined-risk
// credit baskets reserve the wing width; debit baskets reserve the paid
// premium.
func MarginPerLot(cfg IndexConfig, netPremium float64) float64 {
	if netPremium > 0 {
		return cfg.Width * float64(cfg.LotSize)
	}
	return math.Abs(netPremium) * float64(cfg.LotSize)
}

// Value re-prices the basket's legs at current market inputs and returns
// the per-unit cost of closing it now, with the same sign convention as
// entry (positive = credit to close).
func Value(template string, cfg IndexConfig, anchor, spot, vix float64, daysToExpiry int, pricer Pricer) float64 {
	legs := BuildLegs(template, cfg, anchor, spot, vix, daysToExpiry, pricer)
	return NetPremium(legs)
}

// UnrealizedPnL estimates the basket's open P&L per unit. A position that
// collected netEntry must pay the current net value to close; a debit
// position recovers it.
func UnrealizedPnL(netEntry, netNow float64) float64 {
	return netEntry - netNow
}

// ExitDecision is the managed-risk verdict for an open basket.
type ExitDecision struct {
	Exit   bool
	Reason string
}

// CheckExit applies the managed-risk rules to a basket's per-position
// P&L. Amounts are totals (per-unit values scaled by lot size and lots).
func CheckExit(netEntryTotal, pnlTotal float64, expiry time.Time, now time.Time) ExitDecision {
	if !expiry.IsZero() {
		daysLeft := int(expiry.Sub(now).Hours() / 24)
		if daysLeft <= expiryExitDays {
			return ExitDecision{Exit: true, Reason: "EXPIRY"}
		}
	}

	if netEntryTotal > 0 {
		// Credit basket: max profit is the collected credit.
		if pnlTotal <= -netEntryTotal*creditStopMult {
			return ExitDecision{Exit: true, Reason: "STOP_LOSS"}
		}
		if pnlTotal >= netEntryTotal*creditTargetPct {
			return ExitDecision{Exit: true, Reason: "TARGET"}
		}
		return ExitDecision{}
	}

	cost := math.Abs(netEntryTotal)
	if pnlTotal <= -cost*debitStopPct {
		return ExitDecision{Exit: true, Reason: "STOP_LOSS"}
	}
	if pnlTotal >= cost*debitTargetMult {
		return ExitDecision{Exit: true, Reason: "TARGET"}
	}
	return ExitDecision{}
}
