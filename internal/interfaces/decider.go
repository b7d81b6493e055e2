package interfaces

import (
	"context"

	"kis-trading-bot/internal/types"
)

// Decider is the boundary to the external analysis pipeline. It produces
// a BUY/SELL/HOLD decision for a ticker; the executor is its only consumer.
type Decider interface {
	Decide(ctx context.Context, ticker string) (types.Decision, error)
}
