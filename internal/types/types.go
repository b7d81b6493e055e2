package types

import "strings"

// Decision actions handed to the executor by the analysis pipeline.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Decision is the output of the external analysis pipeline: what to do
// with a ticker, and why.
type Decision struct {
	Action     string  `json:"action"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	Qty        int     `json:"qty,omitempty"`
}

// Order side codes.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order is a single cash-order request. Price 0 means a market order.
type Order struct {
	Ticker   string
	Side     string
	Quantity int
	Price    int
}

// OrderResult is a brokerage-accepted order.
type OrderResult struct {
	OrderNo string `json:"order_no"`
}

// Position is a snapshot of one holding as reported by the brokerage.
// Snapshots are values: they are re-read on every use and never cached,
// since fills outside this process can change holdings at any time.
type Position struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
	ProfitLoss   float64 `json:"profit_loss"`
	ProfitRate   float64 `json:"profit_rate"`
}

// ExitDecision classifies one position against the configured exit rules.
type ExitDecision struct {
	Position Position `json:"position"`
	Action   string   `json:"action"` // SELL or HOLD
	Reason   string   `json:"reason"`
}

// Execution statuses.
const (
	StatusHold    = "HOLD"
	StatusSuccess = "SUCCESS"
)

// ExecutionResult is the structured outcome of one decision execution.
type ExecutionResult struct {
	Ticker       string `json:"ticker"`
	Decision     string `json:"decision"`
	Status       string `json:"status"`
	Quantity     int    `json:"quantity,omitempty"`
	Price        int    `json:"price,omitempty"`
	CurrentPrice int    `json:"current_price,omitempty"`
	OrderNo      string `json:"order_no,omitempty"`
}

// NewsArticle is one scraped headline for a ticker.
type NewsArticle struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

// Candle is one daily OHLCV bar.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Indicators holds the technical indicators computed over a candle series.
type Indicators struct {
	SMA map[int]float64
	RSI float64
	BB  struct{ Middle, Upper, Lower float64 }
	ATR float64
}

// NormalizeTicker strips market suffixes (.KS/.KQ) and zero-pads a KRX
// stock code to 6 digits.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if i := strings.IndexByte(ticker, '.'); i >= 0 {
		ticker = ticker[:i]
	}
	for len(ticker) < 6 {
		ticker = "0" + ticker
	}
	return ticker
}
