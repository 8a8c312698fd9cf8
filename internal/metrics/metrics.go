package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignalsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_signals_emitted_total",
			Help: "Actionable signals emitted by the dispatcher (by strategy).",
		},
		[]string{"strategy"},
	)

	TradesOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_trades_opened_total",
			Help: "Positions opened in the ledger (by strategy).",
		},
		[]string{"strategy"},
	)

	TradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_trades_closed_total",
			Help: "Positions closed (by strategy and exit reason).",
		},
		[]string{"strategy", "reason"},
	)

	PositionsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swingtrader_positions_open",
			Help: "Current number of open positions per strategy.",
		},
		[]string{"strategy"},
	)

	WalletBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swingtrader_wallet_balance",
			Help: "Available balance per strategy wallet.",
		},
		[]string{"strategy"},
	)

	ScanErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swingtrader_scan_errors_total",
			Help: "Per-symbol failures recovered during scan passes.",
		},
	)
)

func init() {
	prometheus.MustRegister(SignalsEmitted, TradesOpened, TradesClosed,
		PositionsOpen, WalletBalance, ScanErrors)
}
