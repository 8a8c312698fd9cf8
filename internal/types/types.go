package types

import "time"

// Candle is one OHLCV bar. Ts is the bar's unix timestamp (seconds).
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Action is the closed set of trade recommendations an evaluator can emit.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Trend classifies the EMA structure of a series.
type Trend string

const (
	TrendUp       Trend = "UP"
	TrendDown     Trend = "DOWN"
	TrendSideways Trend = "SIDEWAYS"
)

// Indicators is the bundle derived from one OHLCV series for the most
// recent bar. It is recomputed on every scan and never persisted.
// Prev* fields carry the prior bar's values for crossover detection.
type Indicators struct {
	Close, Open, High, Low float64
	PrevClose              float64

	EMA20, EMA50, EMA200 float64
	PrevEMA20, PrevEMA50 float64

	RSI, PrevRSI               float64
	MACD, MACDSignal, MACDHist float64
	PrevMACD, PrevMACDSignal   float64

	ATR                       float64
	BBUpper, BBLower, BBWidth float64

	Volume, VolumeAvg, VolumeRatio float64

	SwingHigh, SwingLow float64
	Trend               Trend

	// SuperTrend band state and prior-session pivot levels for the
	// compound trend+pivot strategy.
	SuperTrend    float64
	SuperTrendDir int // +1 bullish, -1 bearish
	PivotP        float64
	PivotR1       float64
	PivotR2       float64
	PivotS1       float64
	PivotS2       float64

	// TrendSlope is the 5-bar close change in percent; PrevATR is the
	// ATR one bar back (expansion check).
	TrendSlope float64
	PrevATR    float64

	// Bars is the length of the source series. Trend-following
	// evaluators refuse to fire on short histories.
	Bars int
}

// OptionKind is the contract type of a single leg.
type OptionKind string

const (
	Call OptionKind = "CE"
	Put  OptionKind = "PE"
)

// OptionLeg is one contract within a multi-leg basket.
type OptionLeg struct {
	Strike  float64
	Kind    OptionKind
	Side    Action // Buy or Sell
	Premium float64
}

// OptionSetup is the multi-leg payload attached to an options signal.
// NetPremium is the signed cash flow per unit: positive = net credit,
// negative = net debit.
type OptionSetup struct {
	Template     string
	AnchorStrike float64
	Expiry       time.Time
	LotSize      int
	Legs         []OptionLeg
	NetPremium   float64
}

// Signal is one evaluator's recommendation for a symbol.
type Signal struct {
	Symbol     string
	Strategy   string
	Action     Action
	Confidence float64
	Entry      float64
	StopLoss   float64
	Target     float64
	Reasons    []string

	// Options is non-nil only for multi-leg strategies.
	Options *OptionSetup
}

// AssetKind distinguishes single-instrument trades from option baskets.
type AssetKind string

const (
	Equity       AssetKind = "EQUITY"
	OptionBasket AssetKind = "OPTION_BASKET"
)

// Status is the persisted lifecycle state of a position.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Position is one persisted unit of risk, from open to close.
// For option baskets EntryPrice holds the signed net premium per unit and
// StrikePrice/ExpiryDate anchor the leg template reconstruction.
type Position struct {
	ID         int64
	Symbol     string
	Strategy   string
	Side       Action
	AssetKind  AssetKind
	EntryPrice float64
	Quantity   int
	EntryTime  time.Time
	StopLoss   float64
	Target     float64
	Status     Status

	ExitPrice   float64
	ExitTime    time.Time
	RealizedPnL float64
	ExitReason  string

	StrikePrice float64
	ExpiryDate  time.Time
}

// Risk returns the initial per-unit risk of the position.
func (p *Position) Risk() float64 {
	r := p.EntryPrice - p.StopLoss
	if p.Side == Sell {
		r = p.StopLoss - p.EntryPrice
	}
	return r
}

// StrategyWallet is the per-strategy capital account.
type StrategyWallet struct {
	Strategy         string
	Allocation       float64
	AvailableBalance float64
	UpdatedAt        time.Time
}

// OrderReq is a broker order request.
type OrderReq struct {
	Symbol string
	Side   Action
	Qty    int
	Price  float64
	Tag    string
}

// OrderResp is the broker's acknowledgement.
type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
