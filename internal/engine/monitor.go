package engine

import (
	"context"
	"time"

	"kis-trading-bot/internal/interfaces"
	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/trace"
	"kis-trading-bot/internal/types"
)

// MonitorConfig drives the polling loop.
type MonitorConfig struct {
	Rules ExitRules

	// Interval is the sleep between polling iterations.
	Interval time.Duration

	// MaxIterations bounds the loop. Zero runs until cancelled.
	MaxIterations int

	// AutoExecute places SELL orders for triggered exits instead of
	// only reporting them.
	AutoExecute bool
}

// Monitor polls account positions and applies the exit rules each
// iteration. Position snapshots are re-read every pass, never cached.
type Monitor struct {
	brk  interfaces.Broker
	exec interfaces.Executor
	cfg  MonitorConfig

	sleep func(ctx context.Context, d time.Duration) error
}

// NewMonitor builds a monitor. exec may be nil when AutoExecute is off.
func NewMonitor(brk interfaces.Broker, exec interfaces.Executor, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Monitor{
		brk:   brk,
		exec:  exec,
		cfg:   cfg,
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckPositions performs one read-only pass: fetch positions, apply
// the exit rules, and return the decisions. No orders are placed.
func (m *Monitor) CheckPositions(ctx context.Context) ([]types.ExitDecision, error) {
	positions, err := m.brk.Positions(ctx)
	if err != nil {
		return nil, err
	}
	return EvaluateExits(positions, m.cfg.Rules), nil
}

// ExecuteExitRules performs one pass of the exit rules. With dryRun it
// behaves like CheckPositions; otherwise triggered SELLs are executed
// with per-ticker failure isolation. The decisions are returned either
// way.
func (m *Monitor) ExecuteExitRules(ctx context.Context, dryRun bool) ([]types.ExitDecision, error) {
	decisions, err := m.CheckPositions(ctx)
	if err != nil {
		return nil, err
	}
	if !dryRun && m.exec != nil {
		m.executeSells(ctx, decisions)
	}
	return decisions, nil
}

// Run polls until ctx is cancelled or MaxIterations passes complete.
// The observer is notified with the SELL-classified decisions, only on
// iterations that produce at least one. A failed position fetch is
// logged and the loop continues.
// Cancellation is honored at iteration and sleep boundaries.
func (m *Monitor) Run(ctx context.Context, observer interfaces.PositionObserver) error {
	logger.Info(ctx, "Position monitor starting",
		"stopLossPct", m.cfg.Rules.StopLossPct,
		"takeProfitPct", m.cfg.Rules.TakeProfitPct,
		"interval", m.cfg.Interval,
		"maxIterations", m.cfg.MaxIterations,
		"autoExecute", m.cfg.AutoExecute)

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			logger.Info(ctx, "Position monitor stopped", "iterations", iteration-1)
			return err
		}

		m.runIteration(ctx, iteration, observer)

		if m.cfg.MaxIterations > 0 && iteration >= m.cfg.MaxIterations {
			logger.Info(ctx, "Position monitor finished", "iterations", iteration)
			return nil
		}

		if err := m.sleep(ctx, m.cfg.Interval); err != nil {
			logger.Info(ctx, "Position monitor stopped during sleep", "iterations", iteration)
			return err
		}
	}
}

func (m *Monitor) runIteration(ctx context.Context, iteration int, observer interfaces.PositionObserver) {
	ctx, span := trace.StartSpan(ctx, "monitor.iteration")
	defer span.End()

	decisions, err := m.CheckPositions(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch positions, will retry next iteration", err, "iteration", iteration)
		return
	}

	sells := SellCount(decisions)
	logger.Debug(ctx, "Monitor iteration complete",
		"iteration", iteration, "positions", len(decisions), "sells", sells)
	if sells == 0 {
		return
	}

	if observer != nil {
		m.notify(ctx, observer, Sells(decisions))
	}
	if m.cfg.AutoExecute && m.exec != nil {
		m.executeSells(ctx, decisions)
	}
}

// notify invokes the observer, containing any panic so a broken
// callback cannot take the loop down.
func (m *Monitor) notify(ctx context.Context, observer interfaces.PositionObserver, decisions []types.ExitDecision) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Position observer panicked", "panic", r)
		}
	}()
	observer.OnExitDecisions(ctx, decisions)
}

// executeSells places a SELL for every triggered exit. One ticker's
// failure does not stop the others.
func (m *Monitor) executeSells(ctx context.Context, decisions []types.ExitDecision) {
	for _, d := range decisions {
		if d.Action != types.ActionSell {
			continue
		}
		res, err := m.exec.Execute(ctx, d.Position.Ticker, types.ActionSell, 0, 0)
		if err != nil {
			logger.ErrorWithErr(ctx, "Auto-exit order failed", err,
				"ticker", d.Position.Ticker, "reason", d.Reason)
			continue
		}
		logger.Info(ctx, "Auto-exit order placed",
			"ticker", res.Ticker, "qty", res.Quantity, "orderNo", res.OrderNo, "reason", d.Reason)
	}
}
