package eod

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/types"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSummarizeDayWritesClosedTrades(t *testing.T) {
	dir := t.TempDir()
	st, err := ledger.Open(filepath.Join(dir, "trades.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	id, err := st.OpenPosition(ctx, &types.Position{
		Symbol:     "RELIANCE",
		Strategy:   "EMA_CROSSOVER",
		Side:       types.Buy,
		AssetKind:  types.Equity,
		EntryPrice: 2500,
		Quantity:   10,
		EntryTime:  time.Now().AddDate(0, 0, -3),
		StopLoss:   2400,
		Target:     2700,
	})
	if err != nil {
		t.Fatalf("OpenPosition: %v", err)
	}
	if _, err := st.ClosePosition(ctx, id, 2600, "TARGET"); err != nil {
		t.Fatalf("ClosePosition: %v", err)
	}

	s := New(st, dir)
	path, err := s.SummarizeToday(ctx)
	if err != nil {
		t.Fatalf("SummarizeToday: %v", err)
	}
	if path == "" {
		t.Fatal("Expected a report path")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	// Header, one trade, TOTAL row, one wallet row.
	if len(records) != 4 {
		t.Fatalf("Expected 4 CSV rows, got %d", len(records))
	}
	if records[1][1] != "RELIANCE" || records[1][8] != "1000.00" {
		t.Errorf("Unexpected trade row %v", records[1])
	}
	if records[2][0] != "TOTAL" || records[2][8] != "1000.00" {
		t.Errorf("Unexpected total row %v", records[2])
	}
	if records[3][0] != "WALLET" || records[3][2] != "EMA_CROSSOVER" {
		t.Errorf("Unexpected wallet row %v", records[3])
	}
}

func TestSummarizeDayEmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	st, err := ledger.Open(filepath.Join(dir, "trades.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	s := New(st, dir)
	path, err := s.SummarizeToday(context.Background())
	if err != nil {
		t.Fatalf("SummarizeToday: %v", err)
	}
	if path != "" {
		t.Errorf("Expected no report for an empty day, got %s", path)
	}
}
