package strategy

import (
	"testing"

	"swing-trader/internal/types"
)

// stubEvaluator emits a fixed signal, for dispatcher wiring tests.
type stubEvaluator struct {
	name       string
	action     types.Action
	confidence float64
}

func (s stubEvaluator) Name() string { return s.name }
func (s stubEvaluator) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	return types.Signal{
		Symbol:     symbol,
		Strategy:   s.name,
		Action:     s.action,
		Confidence: s.confidence,
	}
}

func TestDispatchPicksHighestConfidence(t *testing.T) {
	d := NewDispatcher([]Evaluator{
		stubEvaluator{"A", types.Buy, 0.6},
		stubEvaluator{"B", types.Sell, 0.9},
		stubEvaluator{"C", types.Buy, 0.7},
	})
	sig := d.Dispatch("SBIN", &types.Indicators{})
	if sig.Strategy != "B" {
		t.Errorf("Expected strategy B to win, got %s", sig.Strategy)
	}
	if sig.Action != types.Sell {
		t.Errorf("Expected SELL, got %s", sig.Action)
	}
}

func TestDispatchFloor(t *testing.T) {
	d := NewDispatcher([]Evaluator{
		stubEvaluator{"A", types.Buy, 0.49},
		stubEvaluator{"B", types.Hold, 0},
	})
	sig := d.Dispatch("SBIN", &types.Indicators{})
	if sig.Action != types.Hold {
		t.Fatalf("Expected HOLD below the dispatch floor, got %s", sig.Action)
	}

	// Exactly at the floor is actionable.
	d = NewDispatcher([]Evaluator{stubEvaluator{"A", types.Buy, 0.5}})
	sig = d.Dispatch("SBIN", &types.Indicators{})
	if sig.Action != types.Buy {
		t.Errorf("Expected BUY at exactly the floor, got %s", sig.Action)
	}
}

func TestDispatchTieBreaksByRegistration(t *testing.T) {
	d := NewDispatcher([]Evaluator{
		stubEvaluator{"FIRST", types.Buy, 0.8},
		stubEvaluator{"SECOND", types.Sell, 0.8},
	})
	sig := d.Dispatch("SBIN", &types.Indicators{})
	if sig.Strategy != "FIRST" {
		t.Errorf("Expected first-registered strategy to win the tie, got %s", sig.Strategy)
	}
}

func TestDispatchAllIncludesHolds(t *testing.T) {
	d := NewDispatcher(DefaultRegistry())
	sigs := d.DispatchAll("SBIN", &types.Indicators{VolumeRatio: 0.5, ATR: 1})
	if len(sigs) != len(DefaultRegistry()) {
		t.Fatalf("Expected %d signals, got %d", len(DefaultRegistry()), len(sigs))
	}
	for _, sig := range sigs {
		if sig.Action != types.Hold {
			t.Errorf("%s: expected HOLD on dead tape, got %s", sig.Strategy, sig.Action)
		}
	}
}

func TestDefaultRegistryOrder(t *testing.T) {
	want := []string{
		"BB_MEAN_REVERSION", "TREND_PULLBACK", "MACD_MOMENTUM",
		"EMA_CROSSOVER", "SWING_BREAKOUT", "SUPERTREND_PIVOT",
	}
	got := DefaultRegistry()
	if len(got) != len(want) {
		t.Fatalf("Expected %d evaluators, got %d", len(want), len(got))
	}
	for i, ev := range got {
		if ev.Name() != want[i] {
			t.Errorf("Registry[%d]: expected %s, got %s", i, want[i], ev.Name())
		}
	}
}
