package interfaces

import (
	"context"

	"kis-trading-bot/internal/types"
)

// Executor translates an analysis decision into an order. Quantity 0
// auto-sizes the order (buyable amount for BUY, held quantity for SELL);
// limitPrice 0 places a market order.
type Executor interface {
	Execute(ctx context.Context, ticker, decision string, quantity, limitPrice int) (types.ExecutionResult, error)
}
