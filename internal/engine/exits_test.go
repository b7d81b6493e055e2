package engine

import (
	"strings"
	"testing"

	"kis-trading-bot/internal/types"
)

var testRules = ExitRules{StopLossPct: -5, TakeProfitPct: 10}

func pos(ticker string, avg, cur float64) types.Position {
	return types.Position{Ticker: ticker, Quantity: 1, AvgPrice: avg, CurrentPrice: cur}
}

func TestProfitRate(t *testing.T) {
	cases := []struct {
		name string
		avg  float64
		cur  float64
		want float64
	}{
		{"gain", 100, 112, 12},
		{"loss", 100, 94, -6},
		{"flat", 100, 100, 0},
		{"zero average", 0, 50000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ProfitRate(pos("005930", tc.avg, tc.cur))
			if got != tc.want {
				t.Fatalf("ProfitRate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateExitsThresholds(t *testing.T) {
	positions := []types.Position{
		pos("A00001", 100, 94),  // -6%, stop loss
		pos("A00002", 100, 102), // +2%, hold
		pos("A00003", 100, 112), // +12%, take profit
	}

	decisions := EvaluateExits(positions, testRules)
	if len(decisions) != 3 {
		t.Fatalf("got %d decisions, want one per position", len(decisions))
	}

	wantActions := []string{types.ActionSell, types.ActionHold, types.ActionSell}
	for i, d := range decisions {
		if d.Action != wantActions[i] {
			t.Fatalf("decision %d = %s, want %s (%s)", i, d.Action, wantActions[i], d.Reason)
		}
	}
	if !strings.Contains(decisions[0].Reason, "stop-loss") {
		t.Fatalf("reason = %q", decisions[0].Reason)
	}
	if !strings.Contains(decisions[2].Reason, "take-profit") {
		t.Fatalf("reason = %q", decisions[2].Reason)
	}
	if SellCount(decisions) != 2 {
		t.Fatalf("SellCount = %d, want 2", SellCount(decisions))
	}

	sells := Sells(decisions)
	if len(sells) != 2 {
		t.Fatalf("Sells returned %d decisions, want 2", len(sells))
	}
	if sells[0].Position.Ticker != "A00001" || sells[1].Position.Ticker != "A00003" {
		t.Fatalf("Sells = [%s %s], want [A00001 A00003]", sells[0].Position.Ticker, sells[1].Position.Ticker)
	}
}

func TestEvaluateExitsBoundariesInclusive(t *testing.T) {
	decisions := EvaluateExits([]types.Position{
		pos("A00001", 100, 95),  // exactly -5%
		pos("A00002", 100, 110), // exactly +10%
	}, testRules)

	for i, d := range decisions {
		if d.Action != types.ActionSell {
			t.Fatalf("decision %d at exact threshold = %s, want SELL", i, d.Action)
		}
	}
}

func TestEvaluateExitsZeroAverageHolds(t *testing.T) {
	decisions := EvaluateExits([]types.Position{pos("A00001", 0, 50000)}, testRules)
	if decisions[0].Action != types.ActionHold {
		t.Fatalf("zero-average position = %s, want HOLD", decisions[0].Action)
	}
}

func TestEvaluateExitsEmpty(t *testing.T) {
	if got := EvaluateExits(nil, testRules); len(got) != 0 {
		t.Fatalf("expected no decisions, got %d", len(got))
	}
}
