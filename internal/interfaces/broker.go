package interfaces

import (
	"context"

	"kis-trading-bot/internal/types"
)

// Broker is the brokerage-facing surface of the execution client: account
// reads and order placement. All methods go through the rate-limited,
// session-managed transport.
type Broker interface {
	CurrentPrice(ctx context.Context, ticker string) (int, error)
	Positions(ctx context.Context) ([]types.Position, error)
	BuyableQuantity(ctx context.Context, ticker string, price int) (int, error)
	PlaceOrder(ctx context.Context, order types.Order) (types.OrderResult, error)
	PortfolioSummary(ctx context.Context) (string, error)
}
