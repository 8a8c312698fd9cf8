// Package risk sizes positions so a stopped-out trade costs a bounded
// fraction of the strategy's capital.
package risk

import (
	"errors"
	"math"
)

// ErrDegenerateRisk means entry and stop coincide (or are inverted into a
// zero distance), so risk-based sizing is undefined.
var ErrDegenerateRisk = errors.New("degenerate risk: entry equals stop")

// Quantity returns the integer position size for a risk-capped entry.
//
// The unit count is capital*maxRisk / |entry-stop|, additionally capped
// by what the capital can actually buy, with a floor of one unit.
func Quantity(entry, stop, capital, maxRisk float64) (int, error) {
	riskPerUnit := math.Abs(entry - stop)
	if riskPerUnit <= 0 {
		return 0, ErrDegenerateRisk
	}
	if entry <= 0 || capital <= 0 || maxRisk <= 0 {
		return 0, ErrDegenerateRisk
	}

	qtyByRisk := int(capital * maxRisk / riskPerUnit)
	qtyByCapital := int(capital / entry)

	qty := qtyByRisk
	if qtyByCapital < qty {
		qty = qtyByCapital
	}
	if qty < 1 {
		qty = 1
	}
	return qty, nil
}

// QuantityByCapital sizes purely by affordability, used when a strategy
// allocates a fixed capital slice per trade instead of a risk budget.
func QuantityByCapital(entry, capital float64) int {
	if entry <= 0 || capital <= 0 {
		return 0
	}
	return int(capital / entry)
}
