// Package noop provides a decider that never trades. It stands in when
// no analysis pipeline is wired, keeping the executor path exercisable.
package noop

import (
	"context"

	"kis-trading-bot/internal/types"
)

type Decider struct{}

func New() *Decider {
	return &Decider{}
}

// Decide always holds.
func (d *Decider) Decide(ctx context.Context, ticker string) (types.Decision, error) {
	return types.Decision{
		Action: types.ActionHold,
		Reason: "no analysis pipeline configured",
	}, nil
}
