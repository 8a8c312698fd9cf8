package scanner

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/store"
	"swing-trader/internal/strategy"
	"swing-trader/internal/types"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Setenv("TRADER_LOG_DIR", filepath.Join(os.TempDir(), "scanner-test-logs"))
	os.Exit(m.Run())
}

// fakeBroker serves synthetic candles and records orders.
type fakeBroker struct {
	staleDays map[string]int
	orders    []types.OrderReq
	failOrder bool
	noData    map[string]bool
}

func (f *fakeBroker) DailyCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error) {
	if f.noData[symbol] {
		return nil, fmt.Errorf("no candles for %s", symbol)
	}
	end := time.Now().AddDate(0, 0, -f.staleDays[symbol])
	out := make([]types.Candle, 250)
	for i := range out {
		ts := end.AddDate(0, 0, i-249)
		base := 100 + float64(i)*0.1
		out[i] = types.Candle{
			Ts:    ts.Unix(),
			Open:  base,
			High:  base + 1,
			Low:   base - 1,
			Close: base + 0.5,
			Vol:   100000,
		}
	}
	return out, nil
}

func (f *fakeBroker) LTP(ctx context.Context, symbol string) (float64, error) {
	return 125, nil
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if f.failOrder {
		return types.OrderResp{}, fmt.Errorf("exchange rejected order")
	}
	f.orders = append(f.orders, req)
	return types.OrderResp{OrderID: fmt.Sprintf("SIM-%d", len(f.orders)), Status: "COMPLETE"}, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) {
	f.messages = append(f.messages, text)
}

// alwaysBuy emits a fixed-confidence BUY regardless of the tape, so the
// scanner's gating can be exercised deterministically.
type alwaysBuy struct{}

func (alwaysBuy) Name() string { return "STUB_BUY" }
func (alwaysBuy) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	return types.Signal{
		Symbol:     symbol,
		Strategy:   "STUB_BUY",
		Action:     types.Buy,
		Confidence: 0.9,
		Entry:      ind.Close,
		StopLoss:   ind.Close - 5,
		Target:     ind.Close + 10,
		Reasons:    []string{"stub"},
	}
}

type neverBuy struct{}

func (neverBuy) Name() string { return "STUB_HOLD" }
func (neverBuy) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	return types.Signal{Symbol: symbol, Strategy: "STUB_HOLD", Action: types.Hold}
}

func testConfig(symbols ...string) *store.Config {
	cfg := &store.Config{
		Mode:      "DRY_RUN",
		Exchange:  "NSE",
		DBPath:    "unused",
		Watchlist: symbols,
	}
	cfg.Scan.LookbackDays = 250
	cfg.Scan.MaxOrdersPerPass = 3
	cfg.Scan.MaxSlotsPerFamily = 5
	cfg.Scan.FreshnessDays = 4
	cfg.Scan.MaxRiskPct = 2
	return cfg
}

func newTestScanner(t *testing.T, cfg *store.Config, evs []strategy.Evaluator) (*Scanner, *ledger.Store, *fakeBroker, *fakeNotifier) {
	t.Helper()
	st, err := ledger.Open(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	brk := &fakeBroker{staleDays: map[string]int{}, noData: map[string]bool{}}
	notifier := &fakeNotifier{}
	s := New(cfg, brk, brk, st, strategy.NewDispatcher(evs), notifier)
	return s, st, brk, notifier
}

func TestRunOpensSizedPosition(t *testing.T) {
	cfg := testConfig("RELIANCE")
	s, st, brk, _ := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	open, err := st.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Expected 1 open position, got %d", len(open))
	}
	p := open[0]
	if p.Strategy != "STUB_BUY" || p.Side != types.Buy {
		t.Errorf("Unexpected position %+v", p)
	}
	// 2% of 100k = 2000 budget at 5 points risk per share = 400 shares.
	if p.Quantity != 400 {
		t.Errorf("Expected risk-capped qty 400, got %d", p.Quantity)
	}

	if len(brk.orders) != 1 {
		t.Fatalf("Expected 1 order placed, got %d", len(brk.orders))
	}
	if brk.orders[0].Symbol != "RELIANCE" || brk.orders[0].Qty != p.Quantity {
		t.Errorf("Order does not match position: %+v", brk.orders[0])
	}

	wallet, err := st.Wallet(ctx, "STUB_BUY")
	if err != nil {
		t.Fatalf("Wallet: %v", err)
	}
	wantBalance := ledger.DefaultAllocation - p.EntryPrice*float64(p.Quantity)
	if math.Abs(wallet.AvailableBalance-wantBalance) > 1e-6 {
		t.Errorf("Expected balance %f, got %f", wantBalance, wallet.AvailableBalance)
	}
}

func TestDuplicateSignalIsLedgerNoOp(t *testing.T) {
	cfg := testConfig("RELIANCE")
	s, st, brk, notifier := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	balanceBefore, _ := st.Wallet(ctx, "STUB_BUY")

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	open, _ := st.ListOpen(ctx)
	if len(open) != 1 {
		t.Errorf("Expected duplicate signal to open nothing, got %d positions", len(open))
	}
	if len(brk.orders) != 1 {
		t.Errorf("Expected no second order, got %d", len(brk.orders))
	}
	balanceAfter, _ := st.Wallet(ctx, "STUB_BUY")
	if balanceBefore.AvailableBalance != balanceAfter.AvailableBalance {
		t.Errorf("Expected wallet untouched, got %f -> %f",
			balanceBefore.AvailableBalance, balanceAfter.AvailableBalance)
	}

	refreshed := false
	for _, msg := range notifier.messages {
		if len(msg) >= 4 && msg[:4] == "🔄" {
			refreshed = true
		}
	}
	if !refreshed {
		t.Error("Expected a REFRESH notification for the duplicate signal")
	}
}

func TestOrderCapPerPass(t *testing.T) {
	cfg := testConfig("A", "B", "C", "D", "E")
	cfg.Scan.MaxOrdersPerPass = 2
	s, st, _, _ := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	open, _ := st.ListOpen(ctx)
	if len(open) != 2 {
		t.Errorf("Expected order cap of 2, got %d positions", len(open))
	}
}

func TestStrategySlotCap(t *testing.T) {
	cfg := testConfig("A", "B", "C", "D")
	cfg.Scan.MaxSlotsPerFamily = 2
	cfg.Scan.MaxOrdersPerPass = 10
	s, st, _, _ := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	n, err := st.CountOpenByStrategy(ctx, "STUB_BUY")
	if err != nil {
		t.Fatalf("CountOpenByStrategy: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected slot cap of 2 per strategy, got %d", n)
	}
}

func TestStaleSeriesSkipped(t *testing.T) {
	cfg := testConfig("STALE", "FRESH")
	s, st, brk, _ := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	brk.staleDays["STALE"] = 10
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	open, _ := st.ListOpen(ctx)
	if len(open) != 1 || open[0].Symbol != "FRESH" {
		t.Errorf("Expected only FRESH to trade, got %+v", open)
	}
}

func TestSymbolFailureDoesNotAbortPass(t *testing.T) {
	cfg := testConfig("BROKEN", "FRESH")
	s, st, brk, _ := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	brk.noData["BROKEN"] = true
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	open, _ := st.ListOpen(ctx)
	if len(open) != 1 || open[0].Symbol != "FRESH" {
		t.Errorf("Expected FRESH traded despite BROKEN failing, got %+v", open)
	}
}

func TestExecutionFailureKeepsPaperPosition(t *testing.T) {
	cfg := testConfig("RELIANCE")
	s, st, brk, notifier := newTestScanner(t, cfg, []strategy.Evaluator{alwaysBuy{}})
	brk.failOrder = true
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	open, _ := st.ListOpen(ctx)
	if len(open) != 1 {
		t.Fatalf("Expected paper position to stand, got %d", len(open))
	}
	warned := false
	for _, msg := range notifier.messages {
		if len(msg) > 0 && msg[0] == 0xe2 { // warning emoji prefix
			warned = true
		}
	}
	if !warned {
		t.Error("Expected an execution-failure notification")
	}
}

func TestHoldSignalOpensNothing(t *testing.T) {
	cfg := testConfig("RELIANCE")
	s, st, brk, _ := newTestScanner(t, cfg, []strategy.Evaluator{neverBuy{}})
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	open, _ := st.ListOpen(ctx)
	if len(open) != 0 {
		t.Errorf("Expected no positions on HOLD, got %d", len(open))
	}
	if len(brk.orders) != 0 {
		t.Errorf("Expected no orders on HOLD, got %d", len(brk.orders))
	}
}
