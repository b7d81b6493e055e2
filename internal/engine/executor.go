package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kis-trading-bot/internal/interfaces"
	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/tradelog"
	"kis-trading-bot/internal/types"
)

// Sizing errors surfaced when an auto-sized order resolves to zero
// shares.
var (
	ErrInsufficientBuyingPower = errors.New("insufficient buying power")
	ErrNoHoldings              = errors.New("no holdings for ticker")
)

// UnknownDecisionError is returned for decision strings other than
// BUY, SELL, or HOLD.
type UnknownDecisionError struct {
	Decision string
}

func (e *UnknownDecisionError) Error() string {
	return fmt.Sprintf("unknown decision %q", e.Decision)
}

// Executor turns decisions into brokerage orders, auto-sizing the
// quantity when the caller does not fix one.
type Executor struct {
	brk           interfaces.Broker
	maxAutoBuyQty int
	tlog          *tradelog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxAutoBuyQty overrides the ceiling on auto-sized BUY orders.
// The default is 10 shares.
func WithMaxAutoBuyQty(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxAutoBuyQty = n
		}
	}
}

// WithTradeLog records successful fills to the given trade log.
func WithTradeLog(tl *tradelog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.tlog = tl
	}
}

// NewExecutor builds an executor over the given broker.
func NewExecutor(brk interfaces.Broker, opts ...ExecutorOption) *Executor {
	e := &Executor{
		brk:           brk,
		maxAutoBuyQty: 10,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute carries out one decision for a ticker. quantity 0 auto-sizes
// the order; limitPrice 0 places at market. HOLD touches no network.
func (e *Executor) Execute(ctx context.Context, ticker, decision string, quantity, limitPrice int) (types.ExecutionResult, error) {
	ticker = types.NormalizeTicker(ticker)
	decision = strings.ToUpper(strings.TrimSpace(decision))

	switch decision {
	case types.ActionHold:
		logger.Decision(ctx, ticker, decision, "holding, no order placed")
		return types.ExecutionResult{
			Ticker:   ticker,
			Decision: decision,
			Status:   types.StatusHold,
		}, nil
	case types.ActionBuy:
		return e.buy(ctx, ticker, quantity, limitPrice)
	case types.ActionSell:
		return e.sell(ctx, ticker, quantity, limitPrice)
	default:
		return types.ExecutionResult{}, &UnknownDecisionError{Decision: decision}
	}
}

func (e *Executor) buy(ctx context.Context, ticker string, quantity, limitPrice int) (types.ExecutionResult, error) {
	price, err := e.brk.CurrentPrice(ctx, ticker)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("buy %s: %w", ticker, err)
	}

	qty := quantity
	if qty == 0 {
		buyable, err := e.brk.BuyableQuantity(ctx, ticker, limitPrice)
		if err != nil {
			return types.ExecutionResult{}, fmt.Errorf("buy %s: %w", ticker, err)
		}
		qty = buyable
		if qty > e.maxAutoBuyQty {
			qty = e.maxAutoBuyQty
		}
	}
	if qty <= 0 {
		return types.ExecutionResult{}, fmt.Errorf("buy %s: %w", ticker, ErrInsufficientBuyingPower)
	}

	res, err := e.brk.PlaceOrder(ctx, types.Order{
		Ticker:   ticker,
		Side:     types.SideBuy,
		Quantity: qty,
		Price:    limitPrice,
	})
	if err != nil {
		return types.ExecutionResult{}, err
	}

	result := types.ExecutionResult{
		Ticker:       ticker,
		Decision:     types.ActionBuy,
		Status:       types.StatusSuccess,
		Quantity:     qty,
		Price:        limitPrice,
		CurrentPrice: price,
		OrderNo:      res.OrderNo,
	}
	e.record(ctx, result)
	return result, nil
}

func (e *Executor) sell(ctx context.Context, ticker string, quantity, limitPrice int) (types.ExecutionResult, error) {
	price, err := e.brk.CurrentPrice(ctx, ticker)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("sell %s: %w", ticker, err)
	}

	qty := quantity
	if qty == 0 {
		positions, err := e.brk.Positions(ctx)
		if err != nil {
			return types.ExecutionResult{}, fmt.Errorf("sell %s: %w", ticker, err)
		}
		for _, p := range positions {
			if types.NormalizeTicker(p.Ticker) == ticker {
				qty = p.Quantity
				break
			}
		}
	}
	if qty <= 0 {
		return types.ExecutionResult{}, fmt.Errorf("sell %s: %w", ticker, ErrNoHoldings)
	}

	res, err := e.brk.PlaceOrder(ctx, types.Order{
		Ticker:   ticker,
		Side:     types.SideSell,
		Quantity: qty,
		Price:    limitPrice,
	})
	if err != nil {
		return types.ExecutionResult{}, err
	}

	result := types.ExecutionResult{
		Ticker:       ticker,
		Decision:     types.ActionSell,
		Status:       types.StatusSuccess,
		Quantity:     qty,
		Price:        limitPrice,
		CurrentPrice: price,
		OrderNo:      res.OrderNo,
	}
	e.record(ctx, result)
	return result, nil
}

func (e *Executor) record(ctx context.Context, res types.ExecutionResult) {
	if e.tlog == nil {
		return
	}
	if err := e.tlog.AppendFill(res); err != nil {
		logger.ErrorWithErr(ctx, "Failed to append trade log entry", err, "ticker", res.Ticker)
	}
}
