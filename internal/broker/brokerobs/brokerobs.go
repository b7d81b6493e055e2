// Package brokerobs wraps a Broker with tracing and logging so the
// brokerage client stays free of observability concerns.
package brokerobs

import (
	"context"

	"kis-trading-bot/internal/interfaces"
	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/trace"
	"kis-trading-bot/internal/types"
)

type observed struct {
	inner interfaces.Broker
}

// Wrap decorates a broker with spans and logs around each call.
func Wrap(inner interfaces.Broker) interfaces.Broker {
	return &observed{inner: inner}
}

func (o *observed) CurrentPrice(ctx context.Context, ticker string) (int, error) {
	ctx, span := trace.StartSpan(ctx, "broker.CurrentPrice")
	defer span.End()

	price, err := o.inner.CurrentPrice(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Price lookup failed", err, "ticker", ticker)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Price lookup", "ticker", ticker, "price", price)
	return price, nil
}

func (o *observed) Positions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Positions")
	defer span.End()

	positions, err := o.inner.Positions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Positions lookup failed", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Positions lookup", "count", len(positions))
	return positions, nil
}

func (o *observed) BuyableQuantity(ctx context.Context, ticker string, price int) (int, error) {
	ctx, span := trace.StartSpan(ctx, "broker.BuyableQuantity")
	defer span.End()

	qty, err := o.inner.BuyableQuantity(ctx, ticker, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Buyable quantity lookup failed", err, "ticker", ticker)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Buyable quantity lookup", "ticker", ticker, "qty", qty)
	return qty, nil
}

func (o *observed) PlaceOrder(ctx context.Context, order types.Order) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	res, err := o.inner.PlaceOrder(ctx, order)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Order failed", err,
			"ticker", order.Ticker, "side", order.Side, "qty", order.Quantity)
		return types.OrderResult{}, err
	}
	logger.InfoSkip(ctx, 1, "Order placed",
		"ticker", order.Ticker, "side", order.Side, "qty", order.Quantity, "orderNo", res.OrderNo)
	return res, nil
}

func (o *observed) PortfolioSummary(ctx context.Context) (string, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PortfolioSummary")
	defer span.End()

	report, err := o.inner.PortfolioSummary(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Portfolio summary failed", err)
		return "", err
	}
	return report, nil
}
