package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ZonesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liqsweep_zones_computed_total",
			Help: "Total number of liquidity zones computed (by period kind).",
		},
		[]string{"period"},
	)

	SweepsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liqsweep_sweeps_detected_total",
			Help: "Total number of liquidity sweeps detected (by direction).",
		},
		[]string{"direction"},
	)

	DecisionsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liqsweep_decisions_emitted_total",
			Help: "Entry decisions that passed the score gate (by quality).",
		},
		[]string{"quality"},
	)

	DecisionsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "liqsweep_decisions_rejected_total",
			Help: "Entry evaluations rejected by the score gate.",
		},
	)

	OrdersSized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liqsweep_orders_sized_total",
			Help: "Position sizing calls (by method actually used).",
		},
		[]string{"method"},
	)

	TradingStopped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "liqsweep_trading_stopped_total",
			Help: "Times the daily budget state machine flipped to stopped.",
		},
	)

	BacktestsRun = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "liqsweep_backtests_run_total",
			Help: "Completed backtest runs.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ZonesComputed,
		SweepsDetected,
		DecisionsEmitted,
		DecisionsRejected,
		OrdersSized,
		TradingStopped,
		BacktestsRun,
	)
}
