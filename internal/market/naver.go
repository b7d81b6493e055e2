package market

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"kis-trading-bot/internal/api"
	"kis-trading-bot/internal/types"
)

const naverDailyURL = "https://finance.naver.com/item/sise_day.nhn?code=%s&page=%d"

// Fetcher scrapes daily OHLCV bars from Naver Finance.
type Fetcher struct {
	http *api.Client
}

// NewFetcher builds a daily-candle fetcher.
func NewFetcher(opts ...api.ClientOption) *Fetcher {
	return &Fetcher{http: api.NewClient(opts...)}
}

// DailyCandles returns up to `days` daily bars for the ticker, oldest
// first. Naver paginates ten rows per page.
func (f *Fetcher) DailyCandles(ctx context.Context, ticker string, days int) ([]types.Candle, error) {
	ticker = types.NormalizeTicker(ticker)
	if days <= 0 {
		days = 30
	}

	var candles []types.Candle
	pages := (days + 9) / 10
	for page := 1; page <= pages; page++ {
		req := api.NewRequest("GET", fmt.Sprintf(naverDailyURL, ticker, page)).WithContext(ctx)
		for k, v := range api.NaverFinanceHeaders() {
			req.WithHeader(k, v)
		}
		resp, err := f.http.DoWithRetry(req, api.DefaultRetryConfig())
		if err != nil {
			return nil, fmt.Errorf("fetch daily prices for %s: %w", ticker, err)
		}
		if !resp.OK() {
			return nil, fmt.Errorf("fetch daily prices for %s: HTTP %d", ticker, resp.StatusCode)
		}

		pageCandles, err := parseDailyPage(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("parse daily prices for %s: %w", ticker, err)
		}
		if len(pageCandles) == 0 {
			break
		}
		candles = append(candles, pageCandles...)
		if len(candles) >= days {
			candles = candles[:days]
			break
		}
	}

	// Naver lists newest first; callers want chronological order.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

// parseDailyPage extracts candle rows from one sise_day page.
func parseDailyPage(html []byte) ([]types.Candle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var candles []types.Candle
	doc.Find("table.type2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td span.tah")
		if cells.Length() < 7 {
			return
		}
		// Columns: date, close, change, open, high, low, volume.
		date := strings.TrimSpace(cells.Eq(0).Text())
		ts, err := time.Parse("2006.01.02", date)
		if err != nil {
			return
		}
		candles = append(candles, types.Candle{
			Ts:    ts.Unix(),
			Close: parseNumber(cells.Eq(1).Text()),
			Open:  parseNumber(cells.Eq(3).Text()),
			High:  parseNumber(cells.Eq(4).Text()),
			Low:   parseNumber(cells.Eq(5).Text()),
			Vol:   parseNumber(cells.Eq(6).Text()),
		})
	})
	return candles, nil
}

func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
