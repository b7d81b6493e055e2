package engine

import (
	"fmt"

	"kis-trading-bot/internal/types"
)

// ExitRules holds the thresholds a position is judged against.
// StopLossPct is negative, TakeProfitPct positive, both in percent.
type ExitRules struct {
	StopLossPct   float64
	TakeProfitPct float64
}

// ProfitRate computes the percentage gain of a position over its
// average purchase price. A zero average yields zero.
func ProfitRate(p types.Position) float64 {
	if p.AvgPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.AvgPrice) / p.AvgPrice * 100
}

// EvaluateExits classifies every position against the rules. Each
// position yields exactly one decision: SELL when the profit rate
// breaches either threshold, HOLD otherwise.
func EvaluateExits(positions []types.Position, rules ExitRules) []types.ExitDecision {
	decisions := make([]types.ExitDecision, 0, len(positions))
	for _, p := range positions {
		rate := ProfitRate(p)
		p.ProfitRate = rate

		d := types.ExitDecision{Position: p, Action: types.ActionHold}
		switch {
		case rate <= rules.StopLossPct:
			d.Action = types.ActionSell
			d.Reason = fmt.Sprintf("stop-loss: %.2f%% <= %.2f%%", rate, rules.StopLossPct)
		case rate >= rules.TakeProfitPct:
			d.Action = types.ActionSell
			d.Reason = fmt.Sprintf("take-profit: %.2f%% >= %.2f%%", rate, rules.TakeProfitPct)
		default:
			d.Reason = fmt.Sprintf("within thresholds at %.2f%%", rate)
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// Sells returns only the SELL-classified decisions.
func Sells(decisions []types.ExitDecision) []types.ExitDecision {
	sells := make([]types.ExitDecision, 0, len(decisions))
	for _, d := range decisions {
		if d.Action == types.ActionSell {
			sells = append(sells, d)
		}
	}
	return sells
}

// SellCount returns how many of the decisions are SELLs.
func SellCount(decisions []types.ExitDecision) int {
	n := 0
	for _, d := range decisions {
		if d.Action == types.ActionSell {
			n++
		}
	}
	return n
}
