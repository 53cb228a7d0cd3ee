// Package capital enforces the daily profit/loss budget and sizes
// positions. The Manager re-derives the "trading allowed today" state from
// the trade-history aggregate on every call; the only thing it caches is
// the start-of-day balance and the profit-target latch for the current day.
package capital

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/metrics"
	"github.com/evdnx/liqsweep/store"
	"github.com/evdnx/liqsweep/types"
)

type Manager struct {
	cfg     config.CapitalConfig
	history store.TradeHistory
	log     logger.Logger

	mu            sync.Mutex
	cachedDay     time.Time
	cachedStart   decimal.Decimal
	haveStart     bool
	targetReached bool
	wasStopped    bool

	now func() time.Time // test hook
}

func NewManager(cfg config.CapitalConfig, history store.TradeHistory, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{cfg: cfg, history: history, log: log, now: time.Now}
}

// Targets derives today's budget limits from the start-of-day balance. The
// profit target is the larger of the fixed target and the percentage
// target; the loss limit is the more restrictive (more negative) of the
// fixed loss and the percentage loss.
func (m *Manager) Targets(startBalance decimal.Decimal) types.DailyTargets {
	target := decimal.NewFromFloat(m.cfg.ProfitTargetFixed)
	if m.cfg.ProfitTargetPct > 0 {
		pctTarget := startBalance.Mul(decimal.NewFromFloat(m.cfg.ProfitTargetPct))
		if pctTarget.GreaterThan(target) {
			target = pctTarget
		}
	}

	maxLoss := decimal.NewFromFloat(m.cfg.MaxLossFixed)
	if m.cfg.MaxLossPct > 0 {
		pctLoss := startBalance.Mul(decimal.NewFromFloat(m.cfg.MaxLossPct)).Neg()
		// keep the more restrictive (more negative) limit
		if pctLoss.LessThan(maxLoss) {
			maxLoss = pctLoss
		}
	}

	return types.DailyTargets{
		ProfitTarget: target,
		MaxLoss:      maxLoss,
		MaxTrades:    m.cfg.MaxTradesPerDay,
	}
}

// startOfDay returns the balance the account started today with: the
// balance before the first trade closed today, else the current balance.
// The value is cached per day.
func (m *Manager) startOfDay(ctx context.Context, balance decimal.Decimal) (decimal.Decimal, error) {
	day := m.today()
	if m.haveStart && m.cachedDay.Equal(day) {
		return m.cachedStart, nil
	}

	start, ok, err := m.history.StartOfDayBalance(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("start of day balance: %w", err)
	}
	if !ok {
		start = balance
	}

	m.cachedDay = day
	m.cachedStart = start
	m.haveStart = true
	m.targetReached = false
	m.wasStopped = false
	return start, nil
}

func (m *Manager) today() time.Time {
	return m.now().UTC().Truncate(24 * time.Hour)
}

// DailyStats recomputes today's pnl, trade counts and the stop decision
// from the trade-history aggregate.
func (m *Manager) DailyStats(ctx context.Context, balance decimal.Decimal) (types.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, err := m.startOfDay(ctx, balance)
	if err != nil {
		return types.DailyStats{}, err
	}
	day := m.today()

	wins, err := m.history.CountTrades(ctx, "", []types.TradeStatus{types.StatusWon}, day)
	if err != nil {
		return types.DailyStats{}, fmt.Errorf("count wins: %w", err)
	}
	losses, err := m.history.CountTrades(ctx, "", []types.TradeStatus{types.StatusLost}, day)
	if err != nil {
		return types.DailyStats{}, fmt.Errorf("count losses: %w", err)
	}
	pnl, err := m.history.SumPnl(ctx, "", types.ClosedStatuses, day)
	if err != nil {
		return types.DailyStats{}, fmt.Errorf("sum pnl: %w", err)
	}

	targets := m.Targets(start)
	stats := types.DailyStats{
		StartBalance: start,
		Pnl:          pnl,
		Trades:       wins + losses,
		Wins:         wins,
		Losses:       losses,
	}

	if pnl.GreaterThanOrEqual(targets.ProfitTarget) {
		m.targetReached = true
		stats.ShouldStop = true
		stats.StopReason = "daily profit target reached"
	}

	// Profit protection: once the target was reached, stop before the day
	// gives too much of it back.
	if !stats.ShouldStop && m.cfg.ProfitProtection && m.targetReached {
		floor := targets.ProfitTarget.Mul(decimal.NewFromFloat(m.cfg.ProtectionPct))
		if pnl.LessThan(floor) {
			stats.ShouldStop = true
			stats.StopReason = "profit protection triggered"
		}
	}

	if !stats.ShouldStop && pnl.LessThanOrEqual(targets.MaxLoss) {
		stats.ShouldStop = true
		stats.StopReason = "daily loss limit reached"
	}

	if !stats.ShouldStop && targets.MaxTrades > 0 && stats.Trades >= targets.MaxTrades {
		stats.ShouldStop = true
		stats.StopReason = "daily trade limit reached"
	}

	if stats.ShouldStop && !m.wasStopped {
		m.wasStopped = true
		metrics.TradingStopped.Inc()
		m.log.Warn("trading_stopped",
			logger.String("reason", stats.StopReason),
			logger.String("pnl", pnl.String()),
		)
	}
	return stats, nil
}

// CanTrade reports whether the daily budget still allows a new trade.
func (m *Manager) CanTrade(ctx context.Context, balance decimal.Decimal) (bool, string, error) {
	stats, err := m.DailyStats(ctx, balance)
	if err != nil {
		return false, "", err
	}
	if stats.ShouldStop {
		return false, stats.StopReason, nil
	}
	return true, "", nil
}
