package eod

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kis-trading-bot/internal/tradelog"
)

// kst drives the trading-day boundary and the close cutoff.
var kst = time.FixedZone("KST", 9*60*60)

// KRX closes at 15:30; summaries run after the close auction settles.
const closeCutoffMinutes = 15*60 + 40

// symbolSummary aggregates one ticker's fills for the day.
type symbolSummary struct {
	Ticker    string
	Buys      int
	Sells     int
	BuyQty    int
	SellQty   int
	BuyValue  int
	SellValue int
	ExitSells int
}

// Summarizer turns a day's trade log into a CSV summary file.
type Summarizer struct {
	tlog   *tradelog.Logger
	outDir string
	now    func() time.Time
}

// NewSummarizer builds a summarizer reading from tlog and writing CSVs
// under outDir.
func NewSummarizer(tlog *tradelog.Logger, outDir string) *Summarizer {
	if outDir == "" {
		outDir = "logs"
	}
	return &Summarizer{tlog: tlog, outDir: outDir, now: time.Now}
}

// ShouldRunNow reports whether the KRX close has settled for today.
func (s *Summarizer) ShouldRunNow() (bool, string) {
	now := s.now().In(kst)
	minutes := now.Hour()*60 + now.Minute()
	if minutes < closeCutoffMinutes {
		return false, fmt.Sprintf("market close not settled yet (now %s KST, cutoff 15:40)", now.Format("15:04"))
	}
	return true, ""
}

// SummarizeToday summarizes the current KST trading day.
func (s *Summarizer) SummarizeToday() (string, error) {
	return s.SummarizeDay(s.now())
}

// SummarizeDay aggregates the day's fills per ticker and writes a CSV.
// Returns the CSV path. A day with no entries yields an error.
func (s *Summarizer) SummarizeDay(t time.Time) (string, error) {
	entries, err := s.tlog.ReadDay(t)
	if err != nil {
		return "", fmt.Errorf("read trade log: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no trade log entries for %s", t.In(kst).Format("2006-01-02"))
	}

	bySymbol := make(map[string]*symbolSummary)
	for _, e := range entries {
		sum := bySymbol[e.Ticker]
		if sum == nil {
			sum = &symbolSummary{Ticker: e.Ticker}
			bySymbol[e.Ticker] = sum
		}
		switch {
		case e.Kind == "fill" && e.Side == "BUY":
			sum.Buys++
			sum.BuyQty += e.Quantity
			sum.BuyValue += e.Quantity * e.Price
		case e.Kind == "fill" && e.Side == "SELL":
			sum.Sells++
			sum.SellQty += e.Quantity
			sum.SellValue += e.Quantity * e.Price
		case e.Kind == "exit" && e.Side == "SELL":
			sum.ExitSells++
		}
	}

	tickers := make([]string, 0, len(bySymbol))
	for t := range bySymbol {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var b strings.Builder
	b.WriteString("ticker,buys,buy_qty,buy_value,sells,sell_qty,sell_value,exit_signals\n")
	for _, tk := range tickers {
		sum := bySymbol[tk]
		fmt.Fprintf(&b, "%s,%d,%d,%d,%d,%d,%d,%d\n",
			sum.Ticker, sum.Buys, sum.BuyQty, sum.BuyValue,
			sum.Sells, sum.SellQty, sum.SellValue, sum.ExitSells)
	}

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create summary dir: %w", err)
	}
	path := filepath.Join(s.outDir, fmt.Sprintf("eod-%s.csv", t.In(kst).Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}
