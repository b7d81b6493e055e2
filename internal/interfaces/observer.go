package interfaces

import (
	"context"

	"kis-trading-bot/internal/types"
)

// PositionObserver receives the sell-classified positions of a monitor
// tick. It is only invoked when at least one position classifies as SELL.
// Observer failures are isolated from the monitor loop.
type PositionObserver interface {
	OnExitDecisions(ctx context.Context, decisions []types.ExitDecision)
}
