package main

import (
	"context"
	"fmt"
	"os"

	"swing-trader/internal/broker/kite"
	"swing-trader/internal/broker/yahoo"
	"swing-trader/internal/interfaces"
	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/marketdata"
	"swing-trader/internal/metrics"
	"swing-trader/internal/notify"
	"swing-trader/internal/store"
	"swing-trader/internal/trace"
	"swing-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeBroker builds the Kite broker from config and environment.
func initializeBroker(ctx context.Context, cfg *store.Config) *kite.Kite {
	brk := kite.New(kite.Params{
		Mode:        cfg.Mode,
		APIKey:      os.Getenv("KITE_API_KEY"),
		AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
		Exchange:    cfg.Exchange,
	})
	brk.RegisterInstruments(cfg.Instruments)
	if cfg.Mode == "DRY_RUN" {
		logger.Info(ctx, "DRY_RUN mode: orders simulated")
	}
	return brk
}

// initializeMarketData wires the primary Kite feed with the Yahoo
// fallback.
func initializeMarketData(brk *kite.Kite, cfg *store.Config) interfaces.MarketData {
	return marketdata.NewSource(brk, yahoo.New(cfg.YahooTickers))
}

func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	t := notify.NewTelegram(os.Getenv(cfg.Telegram.TokenEnv), os.Getenv(cfg.Telegram.ChatIDEnv))
	if !t.Enabled() {
		logger.Info(ctx, "telegram not configured, notifications disabled")
		return notify.Null{}
	}
	return t
}

func openLedger(ctx context.Context, cfg *store.Config) (*ledger.Store, error) {
	st, err := ledger.Open(cfg.DBPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open trade ledger", err, "path", cfg.DBPath)
		return nil, err
	}
	return st, nil
}

// refreshGauges reloads the open-position and wallet gauges from the
// ledger so scrapes after a pass reflect its end state.
func refreshGauges(ctx context.Context, st *ledger.Store) {
	open, err := st.ListOpen(ctx)
	if err == nil {
		counts := map[string]int{}
		for _, p := range open {
			counts[p.Strategy]++
		}
		metrics.PositionsOpen.Reset()
		for strat, n := range counts {
			metrics.PositionsOpen.WithLabelValues(strat).Set(float64(n))
		}
	}
	wallets, err := st.Wallets(ctx)
	if err == nil {
		for _, w := range wallets {
			metrics.WalletBalance.WithLabelValues(w.Strategy).Set(w.AvailableBalance)
		}
	}
}
