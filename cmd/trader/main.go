// trader runs the swing system: scheduled scan and monitor passes over
// the NSE watchlist, ledger maintenance, and end-of-day reporting.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"swing-trader/internal/eod"
	"swing-trader/internal/ledger"
	"swing-trader/internal/logger"
	"swing-trader/internal/monitor"
	"swing-trader/internal/scanner"
	"swing-trader/internal/store"
	"swing-trader/internal/strategy"
)

var ist = time.FixedZone("IST", 19800)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "trader",
		Short:         "Rule-based swing trading system for NSE equities and index options",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(monitorCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(repairCmd())
	rootCmd.AddCommand(summaryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type deps struct {
	cfg  *store.Config
	scan *scanner.Scanner
	mon  *monitor.Monitor
	eod  *eod.Summarizer
	led  *ledger.Store
}

func setup(ctx context.Context) (*deps, func(), error) {
	if err := initializeSystem(); err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	compressOldLogs(ctx)

	st, err := openLedger(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	brk := initializeBroker(ctx, cfg)
	data := initializeMarketData(brk, cfg)
	notifier := initializeNotifier(ctx, cfg)
	disp := strategy.NewDispatcher(strategy.DefaultRegistry())

	d := &deps{
		cfg:  cfg,
		scan: scanner.New(cfg, data, brk, st, disp, notifier),
		mon: monitor.New(st, data, notifier, monitor.Config{
			MaxHoldDays: cfg.Monitor.MaxHoldDays,
			SymbolDelay: time.Duration(cfg.Monitor.SymbolDelaySec) * time.Second,
			DefaultVIX:  cfg.Options.DefaultVIX,
			VIXSymbol:   cfg.Options.VIXSymbol,
		}),
		eod: eod.New(st, cfg.EOD.OutputDir),
		led: st,
	}
	cleanup := func() { _ = st.Close() }
	return d, cleanup, nil
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one scan pass over the watchlist (and index options if enabled)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := d.scan.Run(ctx); err != nil {
				return err
			}
			return d.scan.RunOptions(ctx)
		},
	}
}

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Evaluate exits for every open position once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return d.mon.Tick(ctx)
		},
	}
}

func serveCmd() *cobra.Command {
	var (
		listen       string
		scanEvery    time.Duration
		monitorEvery time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scan and monitor passes on a schedule with a /metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			d, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if listen != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				srv := &http.Server{Addr: listen, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.ErrorWithErr(ctx, "metrics server failed", err)
					}
				}()
				defer srv.Close()
				logger.Info(ctx, "metrics endpoint up", "addr", listen)
			}

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

			scanTick := time.NewTicker(scanEvery)
			defer scanTick.Stop()
			monTick := time.NewTicker(monitorEvery)
			defer monTick.Stop()
			eodTick := time.NewTicker(time.Minute)
			defer eodTick.Stop()

			var lastEOD string
			logger.Info(ctx, "trader serving",
				"scan_every", scanEvery.String(), "monitor_every", monitorEvery.String())
			for {
				select {
				case <-scanTick.C:
					if err := d.scan.Run(ctx); err != nil {
						logger.ErrorWithErr(ctx, "scan pass failed", err)
					}
					if err := d.scan.RunOptions(ctx); err != nil {
						logger.ErrorWithErr(ctx, "options pass failed", err)
					}
					refreshGauges(ctx, d.led)
				case <-monTick.C:
					if err := d.mon.Tick(ctx); err != nil {
						logger.ErrorWithErr(ctx, "monitor pass failed", err)
					}
					refreshGauges(ctx, d.led)
				case <-eodTick.C:
					now := time.Now().In(ist)
					day := now.Format("2006-01-02")
					if day == lastEOD || now.Hour() < 15 || (now.Hour() == 15 && now.Minute() < 35) {
						continue
					}
					if p, err := d.eod.SummarizeToday(ctx); err != nil {
						logger.ErrorWithErr(ctx, "EOD summary failed", err)
					} else if p != "" {
						logger.Info(ctx, "EOD CSV written", "path", p)
					}
					lastEOD = day
				case <-sigc:
					logger.Info(ctx, "shutting down")
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":9105", "Prometheus metrics listen address (empty to disable)")
	cmd.Flags().DurationVar(&scanEvery, "scan-every", 24*time.Hour, "Interval between scan passes")
	cmd.Flags().DurationVar(&monitorEvery, "monitor-every", 15*time.Minute, "Interval between monitor passes")
	return cmd
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild every strategy wallet from the trade history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			balances, err := d.led.Reconcile(ctx)
			if err != nil {
				return err
			}
			strategies := make([]string, 0, len(balances))
			for s := range balances {
				strategies = append(strategies, s)
			}
			sort.Strings(strategies)
			for _, s := range strategies {
				fmt.Printf("%-28s %12.2f\n", s, balances[s])
			}
			return nil
		},
	}
}

func repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair <trade-id>",
		Short: "Reopen a wrongly closed trade and restore its wallet debit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid trade id %q", args[0])
			}
			ctx := cmd.Context()
			d, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := d.led.Repair(ctx, id); err != nil {
				return err
			}
			fmt.Printf("trade %d reopened\n", id)
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the end-of-day CSV report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			day := time.Now()
			if date != "" {
				day, err = time.ParseInLocation("2006-01-02", date, ist)
				if err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
				}
			}
			p, err := d.eod.SummarizeDay(ctx, day)
			if err != nil {
				return err
			}
			if p == "" {
				fmt.Println("no closed trades for the day")
				return nil
			}
			fmt.Println(p)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "IST calendar day (YYYY-MM-DD), default today")
	return cmd
}
