package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Direction is the anticipated price direction of a signal. Long maps to a
// BUY order, Short to a SELL order.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

func (d Direction) Side() Side {
	if d == Short {
		return Sell
	}
	return Buy
}

// PeriodKind identifies the aggregation period a Zone was derived from.
type PeriodKind string

const (
	PeriodDay  PeriodKind = "DAY"
	PeriodWeek PeriodKind = "WEEK"
)

// Candle is a single OHLCV bar. Candles are immutable once stored and
// ordered ascending by Time per (Symbol, Timeframe).
type Candle struct {
	Symbol    string
	Timeframe string
	Time      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// ZoneMeta records the source OHLC and the ATR that produced a Zone.
type ZoneMeta struct {
	Open  float64
	Close float64
	High  float64
	Low   float64
	ATR   float64
}

// Zone is a liquidity price band derived from one period's OHLC.
// Invariant: Low < High and Height == High - Low. Zones are never mutated;
// a newer Zone of the same period supersedes the old one.
type Zone struct {
	Symbol string
	Period PeriodKind
	Low    float64
	High   float64
	Height float64
	Time   time.Time // period anchor
	Meta   ZoneMeta
}

// SweepEvent marks a liquidity sweep of a Zone boundary: an excursion past
// the boundary followed by a close back inside it.
type SweepEvent struct {
	Symbol    string
	Zone      Zone
	Time      time.Time
	Direction Direction
}

// SignalScore is the weighted multi-indicator breakdown behind an entry
// decision. Ephemeral, never persisted.
type SignalScore struct {
	Total   float64
	Max     float64
	Factors map[string]float64
	Passed  bool
	Reason  string
}

type SignalQuality string

const (
	QualityHigh   SignalQuality = "high"
	QualityMedium SignalQuality = "medium"
	QualityLow    SignalQuality = "low"
)

// EntryDecision carries the price levels and confidence for one entry.
type EntryDecision struct {
	Side        Side
	Entry       float64
	Stop        float64
	TakeProfit  float64
	RiskPercent float64
	Confidence  float64
	Quality     SignalQuality
}

type TradeStatus string

const (
	StatusOpen TradeStatus = "open"
	StatusWon  TradeStatus = "won"
	StatusLost TradeStatus = "lost"
)

// ClosedStatuses is the status set the daily/lookback aggregates filter on.
var ClosedStatuses = []TradeStatus{StatusWon, StatusLost}

// TradeRecord is one trade in the history aggregate. Money fields are
// decimal end to end.
type TradeRecord struct {
	ID           int64
	Symbol       string
	Amount       decimal.Decimal
	Pnl          decimal.Decimal
	Status       TradeStatus
	BalanceAfter decimal.Decimal
	OpenedAt     time.Time
	ClosedAt     time.Time
}

// DailyTargets are the budget limits derived from configuration and the
// start-of-day balance. MaxLoss is negative. MaxTrades of zero means the
// trade count is unbounded.
type DailyTargets struct {
	ProfitTarget decimal.Decimal
	MaxLoss      decimal.Decimal
	MaxTrades    int
}

// DailyStats is the recomputed view of today's trading, including the stop
// decision. Derived on every call, never persisted.
type DailyStats struct {
	StartBalance decimal.Decimal
	Pnl          decimal.Decimal
	Trades       int
	Wins         int
	Losses       int
	ShouldStop   bool
	StopReason   string
}

// PositionSizeResult is the outcome of one sizing call.
type PositionSizeResult struct {
	ContractAmount       decimal.Decimal
	RiskAmount           decimal.Decimal
	RecommendedContracts int
	Method               string
	Confidence           float64
}

// CapitalState is the per-account mutable sizing state. Exactly one manager
// instance owns a given state; it is handed in at construction so it can be
// persisted and restored across restarts.
type CapitalState struct {
	ConsecutiveWins   int
	ConsecutiveLosses int
	MartingaleLevel   int
	MartingaleLosses  decimal.Decimal
	PeakBalance       decimal.Decimal
}

// OrderRequest is what the core hands to an execution gateway.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Entry       float64
	Stop        float64
	TakeProfit  float64
	RiskPercent float64
	OrderType   string
}

// OrderResult is the gateway's answer to an OrderRequest.
type OrderResult struct {
	Accepted      bool
	BrokerOrderID string
	RejectReason  string
}
