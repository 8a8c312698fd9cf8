// Package eod writes the end-of-day CSV report: every position closed
// during the day plus a wallet snapshot, sourced from the ledger.
package eod

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"swing-trader/internal/ledger"
)

var ist = time.FixedZone("IST", 19800)

type Summarizer struct {
	store  *ledger.Store
	outDir string
}

func New(store *ledger.Store, outDir string) *Summarizer {
	return &Summarizer{store: store, outDir: outDir}
}

func csvPath(dir string, t time.Time) string {
	return filepath.Join(dir, "eod", t.Format("2006-01-02")+".csv")
}

// SummarizeDay writes the report for the given IST calendar day and
// returns its path. With no closed trades that day it writes nothing and
// returns an empty path.
func (s *Summarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	day := t.In(ist)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, ist)
	to := from.AddDate(0, 0, 1)

	closed, err := s.store.ClosedBetween(ctx, from, to)
	if err != nil {
		return "", err
	}
	if len(closed) == 0 {
		return "", nil
	}

	outPath := csvPath(s.outDir, day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	headers := []string{"trade_id", "symbol", "strategy", "side", "asset_kind",
		"qty", "entry_price", "exit_price", "realized_pnl", "exit_reason", "held_days"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var totalPnL float64
	for _, p := range closed {
		held := int(p.ExitTime.Sub(p.EntryTime).Hours() / 24)
		rec := []string{
			strconv.FormatInt(p.ID, 10),
			p.Symbol,
			p.Strategy,
			string(p.Side),
			string(p.AssetKind),
			strconv.Itoa(p.Quantity),
			fmt.Sprintf("%.2f", p.EntryPrice),
			fmt.Sprintf("%.2f", p.ExitPrice),
			fmt.Sprintf("%.2f", p.RealizedPnL),
			p.ExitReason,
			strconv.Itoa(held),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalPnL += p.RealizedPnL
	}
	if err := w.Write([]string{"TOTAL", "", "", "", "", "", "", "",
		fmt.Sprintf("%.2f", totalPnL), "", ""}); err != nil {
		return "", err
	}

	wallets, err := s.store.Wallets(ctx)
	if err != nil {
		return "", err
	}
	for _, wl := range wallets {
		if err := w.Write([]string{"WALLET", "", wl.Strategy, "", "", "",
			fmt.Sprintf("%.2f", wl.Allocation), fmt.Sprintf("%.2f", wl.AvailableBalance),
			"", "", ""}); err != nil {
			return "", err
		}
	}
	return outPath, nil
}

// SummarizeToday is the cron entry point.
func (s *Summarizer) SummarizeToday(ctx context.Context) (string, error) {
	return s.SummarizeDay(ctx, time.Now())
}
