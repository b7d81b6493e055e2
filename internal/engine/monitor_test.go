package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"kis-trading-bot/internal/types"
)

// recordingObserver collects every notification it receives.
type recordingObserver struct {
	batches [][]types.ExitDecision
	panics  bool
}

func (o *recordingObserver) OnExitDecisions(ctx context.Context, decisions []types.ExitDecision) {
	o.batches = append(o.batches, decisions)
	if o.panics {
		panic("observer exploded")
	}
}

// scriptedExecutor records executions and fails for scripted tickers.
type scriptedExecutor struct {
	executed []string
	failFor  map[string]bool
}

func (e *scriptedExecutor) Execute(ctx context.Context, ticker, decision string, quantity, limitPrice int) (types.ExecutionResult, error) {
	if e.failFor[ticker] {
		return types.ExecutionResult{}, errors.New("scripted failure")
	}
	e.executed = append(e.executed, ticker)
	return types.ExecutionResult{Ticker: ticker, Decision: decision, Status: types.StatusSuccess}, nil
}

func instantSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestMonitor(brk *fakeBroker, exec *scriptedExecutor, maxIter int, autoExec bool) *Monitor {
	cfg := MonitorConfig{
		Rules:         testRules,
		Interval:      time.Millisecond,
		MaxIterations: maxIter,
		AutoExecute:   autoExec,
	}
	var m *Monitor
	if exec == nil {
		m = NewMonitor(brk, nil, cfg)
	} else {
		m = NewMonitor(brk, exec, cfg)
	}
	m.sleep = instantSleep
	return m
}

func TestMonitorNotifiesOnlyOnSells(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{pos("A00001", 100, 102)}}
	obs := &recordingObserver{}
	m := newTestMonitor(brk, nil, 3, false)

	if err := m.Run(context.Background(), obs); err != nil {
		t.Fatal(err)
	}
	if len(obs.batches) != 0 {
		t.Fatalf("observer notified %d times with no sells, want 0", len(obs.batches))
	}

	brk.positions = []types.Position{pos("A00001", 100, 94)}
	if err := m.Run(context.Background(), obs); err != nil {
		t.Fatal(err)
	}
	if len(obs.batches) != 3 {
		t.Fatalf("observer notified %d times over 3 iterations, want 3", len(obs.batches))
	}
	if len(obs.batches[0]) != 1 || obs.batches[0][0].Action != types.ActionSell {
		t.Fatalf("batch = %+v", obs.batches[0])
	}
}

func TestMonitorObserverReceivesOnlySells(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{
		pos("A00001", 100, 94),  // stop-loss sell
		pos("A00002", 100, 101), // hold
		pos("A00003", 100, 112), // take-profit sell
	}}
	obs := &recordingObserver{}
	m := newTestMonitor(brk, nil, 1, false)

	if err := m.Run(context.Background(), obs); err != nil {
		t.Fatal(err)
	}
	if len(obs.batches) != 1 {
		t.Fatalf("observer notified %d times, want 1", len(obs.batches))
	}
	batch := obs.batches[0]
	if len(batch) != 2 {
		t.Fatalf("observer received %d decisions, want the 2 sells", len(batch))
	}
	for _, d := range batch {
		if d.Action != types.ActionSell {
			t.Fatalf("observer received a %s decision for %s", d.Action, d.Position.Ticker)
		}
	}
	if batch[0].Position.Ticker != "A00001" || batch[1].Position.Ticker != "A00003" {
		t.Fatalf("sells = [%s %s], want [A00001 A00003]", batch[0].Position.Ticker, batch[1].Position.Ticker)
	}
}

func TestMonitorStopsAfterMaxIterations(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{pos("A00001", 100, 94)}}
	obs := &recordingObserver{}
	m := newTestMonitor(brk, nil, 5, false)

	if err := m.Run(context.Background(), obs); err != nil {
		t.Fatal(err)
	}
	if len(obs.batches) != 5 {
		t.Fatalf("ran %d iterations, want exactly 5", len(obs.batches))
	}
}

func TestMonitorAutoExecuteIsolatesFailures(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{
		pos("A00001", 100, 94),  // sell, will fail
		pos("A00002", 100, 112), // sell, succeeds
		pos("A00003", 100, 101), // hold
	}}
	exec := &scriptedExecutor{failFor: map[string]bool{"A00001": true}}
	m := newTestMonitor(brk, exec, 1, true)

	if err := m.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(exec.executed) != 1 || exec.executed[0] != "A00002" {
		t.Fatalf("executed = %v, want only A00002 despite A00001 failing", exec.executed)
	}
}

func TestMonitorAutoExecuteOffPlacesNoOrders(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{pos("A00001", 100, 80)}}
	exec := &scriptedExecutor{}
	m := newTestMonitor(brk, exec, 2, false)

	if err := m.Run(context.Background(), &recordingObserver{}); err != nil {
		t.Fatal(err)
	}
	if len(exec.executed) != 0 {
		t.Fatalf("executed %v with autoExecute off", exec.executed)
	}
}

func TestMonitorSurvivesFetchFailures(t *testing.T) {
	brk := &fakeBroker{posErr: errors.New("gateway timeout")}
	obs := &recordingObserver{}
	m := newTestMonitor(brk, nil, 3, false)

	if err := m.Run(context.Background(), obs); err != nil {
		t.Fatalf("fetch failures must not kill the loop: %v", err)
	}
}

func TestMonitorSurvivesObserverPanic(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{pos("A00001", 100, 80)}}
	obs := &recordingObserver{panics: true}
	m := newTestMonitor(brk, nil, 3, false)

	if err := m.Run(context.Background(), obs); err != nil {
		t.Fatal(err)
	}
	if len(obs.batches) != 3 {
		t.Fatalf("loop stopped after panic: %d iterations, want 3", len(obs.batches))
	}
}

func TestMonitorHonorsCancellation(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{pos("A00001", 100, 100)}}
	m := newTestMonitor(brk, nil, 0, false)

	ctx, cancel := context.WithCancel(context.Background())
	iterations := 0
	m.sleep = func(ctx context.Context, d time.Duration) error {
		iterations++
		if iterations >= 2 {
			cancel()
		}
		return ctx.Err()
	}

	err := m.Run(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteExitRulesDryRun(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{pos("A00001", 100, 80)}}
	exec := &scriptedExecutor{}
	m := newTestMonitor(brk, exec, 1, true)

	decisions, err := m.ExecuteExitRules(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if SellCount(decisions) != 1 {
		t.Fatalf("SellCount = %d, want 1", SellCount(decisions))
	}
	if len(exec.executed) != 0 {
		t.Fatalf("dry run executed %v", exec.executed)
	}

	if _, err := m.ExecuteExitRules(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if len(exec.executed) != 1 || exec.executed[0] != "A00001" {
		t.Fatalf("executed = %v, want [A00001]", exec.executed)
	}
}

func TestCheckPositionsIsReadOnly(t *testing.T) {
	brk := &fakeBroker{positions: []types.Position{
		pos("A00001", 100, 94),
		pos("A00002", 100, 112),
	}}
	m := newTestMonitor(brk, nil, 1, false)

	decisions, err := m.CheckPositions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if SellCount(decisions) != 2 {
		t.Fatalf("SellCount = %d, want 2", SellCount(decisions))
	}
	if len(brk.orders) != 0 {
		t.Fatal("CheckPositions must not place orders")
	}
}
