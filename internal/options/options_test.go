package options

import (
	"math"
	"testing"
	"time"

	"swing-trader/internal/types"
)

func TestSyntheticPricerMonotonicity(t *testing.T) {
	p := SyntheticPricer{}

	// Premium decays as the strike moves away from spot.
	near := p.Premium(24500, 24500, types.Call, 5, 15)
	far := p.Premium(24500, 25500, types.Call, 5, 15)
	if far >= near {
		t.Errorf("Expected OTM premium below ATM: near=%f far=%f", near, far)
	}

	// Higher VIX inflates extrinsic value.
	calm := p.Premium(24500, 25000, types.Call, 5, 12)
	stormy := p.Premium(24500, 25000, types.Call, 5, 25)
	if stormy <= calm {
		t.Errorf("Expected premium to rise with VIX: calm=%f stormy=%f", calm, stormy)
	}

	// More time to expiry is worth more.
	short := p.Premium(24500, 25000, types.Call, 2, 15)
	long := p.Premium(24500, 25000, types.Call, 10, 15)
	if long <= short {
		t.Errorf("Expected premium to rise with time: short=%f long=%f", short, long)
	}
}

func TestSyntheticPricerIntrinsicAndFloor(t *testing.T) {
	p := SyntheticPricer{}

	itm := p.Premium(24500, 24000, types.Call, 5, 15)
	if itm < 500 {
		t.Errorf("Expected ITM call to carry 500 intrinsic, got %f", itm)
	}

	deepOTM := p.Premium(24500, 40000, types.Put, 5, 15)
	// Strike far above spot: the put is deep ITM, intrinsic dominates.
	if deepOTM < 15500 {
		t.Errorf("Expected deep ITM put intrinsic, got %f", deepOTM)
	}

	farCall := p.Premium(24500, 40000, types.Call, 5, 15)
	if math.Abs(farCall-0.5) > 1e-9 {
		t.Errorf("Expected worthless call at the 0.5 floor, got %f", farCall)
	}
}

func TestAnchorStrikeRounding(t *testing.T) {
	if got := Nifty.AnchorStrike(24513); got != 24500 {
		t.Errorf("Expected 24500, got %f", got)
	}
	if got := Nifty.AnchorStrike(24530); got != 24550 {
		t.Errorf("Expected 24550, got %f", got)
	}
	if got := BankNifty.AnchorStrike(52049); got != 52000 {
		t.Errorf("Expected 52000, got %f", got)
	}
}

func TestIronCondorLegs(t *testing.T) {
	legs := BuildLegs(TemplateIronCondor, Nifty, 24500, 24500, 15, 5, SyntheticPricer{})
	if len(legs) != 4 {
		t.Fatalf("Expected 4 legs, got %d", len(legs))
	}

	wantStrikes := map[float64]types.Action{
		25000: types.Sell, // short call at wing distance
		24000: types.Sell, // short put
		25200: types.Buy,  // long call hedge
		23800: types.Buy,  // long put hedge
	}
	for _, l := range legs {
		side, ok := wantStrikes[l.Strike]
		if !ok {
			t.Errorf("Unexpected strike %f", l.Strike)
			continue
		}
		if l.Side != side {
			t.Errorf("Strike %f: expected %s, got %s", l.Strike, side, l.Side)
		}
		if l.Premium <= 0 {
			t.Errorf("Strike %f: expected positive premium", l.Strike)
		}
	}

	// Short strikes are nearer to spot, so the condor collects a credit.
	if net := NetPremium(legs); net <= 0 {
		t.Errorf("Expected iron condor net credit, got %f", net)
	}
}

func TestVerticalSpreadsAreDebits(t *testing.T) {
	bull := BuildLegs(TemplateBullCallSpread, Nifty, 24500, 24500, 15, 5, SyntheticPricer{})
	if len(bull) != 2 {
		t.Fatalf("Expected 2 legs, got %d", len(bull))
	}
	if net := NetPremium(bull); net >= 0 {
		t.Errorf("Expected bull call spread net debit, got %f", net)
	}

	bear := BuildLegs(TemplateBearPutSpread, Nifty, 24500, 24500, 15, 5, SyntheticPricer{})
	if net := NetPremium(bear); net >= 0 {
		t.Errorf("Expected bear put spread net debit, got %f", net)
	}
}

func TestLotsClamped(t *testing.T) {
	margin := MarginPerLot(Nifty, 120) // credit: width x lot size = 5000
	if math.Abs(margin-5000) > 1e-9 {
		t.Fatalf("Expected credit margin 5000, got %f", margin)
	}

	if got := Lots(100000, margin); got != 6 {
		t.Errorf("Expected 6 lots (30000/5000), got %d", got)
	}
	if got := Lots(10000, margin); got != 1 {
		t.Errorf("Expected floor of 1 lot, got %d", got)
	}
	if got := Lots(10000000, margin); got != 10 {
		t.Errorf("Expected cap of 10 lots, got %d", got)
	}
	if got := Lots(100000, 0); got != 0 {
		t.Errorf("Expected 0 lots on zero margin, got %d", got)
	}

	// Debit margin is the paid premium per lot.
	if got := MarginPerLot(Nifty, -80); math.Abs(got-2000) > 1e-9 {
		t.Errorf("Expected debit margin 2000, got %f", got)
	}
}

func TestCheckExitCreditRules(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 7)

	// Loss at twice the credit stops out.
	d := CheckExit(3000, -6000, expiry, time.Now())
	if !d.Exit || d.Reason != "STOP_LOSS" {
		t.Errorf("Expected credit STOP_LOSS, got %+v", d)
	}
	// Profit at half the credit takes the target.
	d = CheckExit(3000, 1500, expiry, time.Now())
	if !d.Exit || d.Reason != "TARGET" {
		t.Errorf("Expected credit TARGET, got %+v", d)
	}
	// In between: hold.
	d = CheckExit(3000, -1000, expiry, time.Now())
	if d.Exit {
		t.Errorf("Expected hold, got %+v", d)
	}
}

func TestCheckExitDebitRules(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 7)

	d := CheckExit(-2000, -1000, expiry, time.Now())
	if !d.Exit || d.Reason != "STOP_LOSS" {
		t.Errorf("Expected debit STOP_LOSS at half the cost, got %+v", d)
	}
	d = CheckExit(-2000, 3000, expiry, time.Now())
	if !d.Exit || d.Reason != "TARGET" {
		t.Errorf("Expected debit TARGET at 1.5x cost, got %+v", d)
	}
	d = CheckExit(-2000, 500, expiry, time.Now())
	if d.Exit {
		t.Errorf("Expected hold, got %+v", d)
	}
}

func TestCheckExitNearExpiry(t *testing.T) {
	d := CheckExit(3000, 0, time.Now().Add(20*time.Hour), time.Now())
	if !d.Exit || d.Reason != "EXPIRY" {
		t.Errorf("Expected EXPIRY exit within a day of expiry, got %+v", d)
	}
}

func TestStrategyIDRoundTrip(t *testing.T) {
	id := StrategyFor(TemplateIronCondor)
	if id != "SWING_OPTIONS_IRON_CONDOR" {
		t.Errorf("Unexpected strategy id %s", id)
	}
	tpl, ok := TemplateOf(id)
	if !ok || tpl != TemplateIronCondor {
		t.Errorf("Expected round trip to %s, got %s (%v)", TemplateIronCondor, tpl, ok)
	}
	if _, ok := TemplateOf("EMA_CROSSOVER"); ok {
		t.Error("Expected equity strategy id to be rejected")
	}
}

func TestEvaluateSelectsTemplates(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 7)
	pricer := SyntheticPricer{}

	rangebound := &types.Indicators{Close: 24500, EMA20: 24480, EMA50: 24470, RSI: 50}
	sig := Evaluate(Nifty, rangebound, 24500, 15, expiry, pricer)
	if sig.Action != types.Sell {
		t.Fatalf("Expected SELL (net credit condor), got %s", sig.Action)
	}
	if sig.Strategy != "SWING_OPTIONS_IRON_CONDOR" {
		t.Errorf("Expected condor strategy id, got %s", sig.Strategy)
	}
	if sig.Options == nil || sig.Options.NetPremium <= 0 {
		t.Error("Expected net credit setup payload")
	}
	if sig.Entry != sig.Options.NetPremium {
		t.Errorf("Expected entry at net premium, got %f vs %f", sig.Entry, sig.Options.NetPremium)
	}

	bullish := &types.Indicators{Close: 24800, EMA20: 24600, EMA50: 24400, RSI: 62}
	sig = Evaluate(Nifty, bullish, 24800, 15, expiry, pricer)
	if sig.Strategy != "SWING_OPTIONS_BULL_CALL_SPREAD" || sig.Action != types.Buy {
		t.Errorf("Expected bull call debit spread, got %s/%s", sig.Strategy, sig.Action)
	}

	bearish := &types.Indicators{Close: 24200, EMA20: 24400, EMA50: 24600, RSI: 38}
	sig = Evaluate(Nifty, bearish, 24200, 15, expiry, pricer)
	if sig.Strategy != "SWING_OPTIONS_BEAR_PUT_SPREAD" || sig.Action != types.Buy {
		t.Errorf("Expected bear put debit spread, got %s/%s", sig.Strategy, sig.Action)
	}

	flat := &types.Indicators{Close: 24500, EMA20: 24480, EMA50: 24470, RSI: 75}
	sig = Evaluate(Nifty, flat, 24500, 15, expiry, pricer)
	if sig.Action != types.Hold {
		t.Errorf("Expected HOLD with no matching setup, got %s", sig.Action)
	}
}
