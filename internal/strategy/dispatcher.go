package strategy

import (
	"sort"

	"swing-trader/internal/types"
)

// dispatchFloor is the minimum confidence an actionable signal needs to
// survive dispatch, on top of each evaluator's own threshold.
const dispatchFloor = 0.5

// DefaultRegistry returns the evaluator suite in its canonical order.
// The order is load-bearing: Dispatch breaks confidence ties in favor of
// the earlier registration.
func DefaultRegistry() []Evaluator {
	return []Evaluator{
		BBMeanReversion{},
		TrendPullback{},
		MACDMomentum{},
		EMACrossover{},
		SwingBreakout{},
		SuperTrendPivot{},
	}
}

// Dispatcher runs a fixed evaluator suite over one indicator bundle and
// picks the single best actionable signal.
type Dispatcher struct {
	evaluators []Evaluator
}

func NewDispatcher(evs []Evaluator) *Dispatcher {
	return &Dispatcher{evaluators: evs}
}

// Dispatch evaluates every registered strategy and returns the
// highest-confidence actionable signal at or above the dispatch floor.
// With no qualifying signal it returns a HOLD carrying the reason.
func (d *Dispatcher) Dispatch(symbol string, ind *types.Indicators) types.Signal {
	var actionable []types.Signal
	for _, ev := range d.evaluators {
		sig := ev.Evaluate(symbol, ind)
		if sig.Action != types.Hold && sig.Confidence >= dispatchFloor {
			actionable = append(actionable, sig)
		}
	}
	if len(actionable) == 0 {
		return types.Signal{
			Symbol:  symbol,
			Action:  types.Hold,
			Reasons: []string{"no high-confidence signals"},
		}
	}

	// Stable sort keeps registration order among equal confidences.
	sort.SliceStable(actionable, func(i, j int) bool {
		return actionable[i].Confidence > actionable[j].Confidence
	})
	return actionable[0]
}

// DispatchAll evaluates every strategy and returns all signals including
// HOLDs, for analysis and journaling.
func (d *Dispatcher) DispatchAll(symbol string, ind *types.Indicators) []types.Signal {
	out := make([]types.Signal, 0, len(d.evaluators))
	for _, ev := range d.evaluators {
		out = append(out, ev.Evaluate(symbol, ind))
	}
	return out
}
