package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/types"
)

const naverNewsURL = "https://finance.naver.com/item/news_news.nhn?code=%s&page=1"

// Scraper fetches headlines for a ticker from Naver Finance.
type Scraper struct {
	timeout     time.Duration
	maxArticles int
}

// NewScraper builds a scraper with the given per-fetch timeout and
// article cap.
func NewScraper(timeout time.Duration, maxArticles int) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxArticles <= 0 {
		maxArticles = 15
	}
	return &Scraper{timeout: timeout, maxArticles: maxArticles}
}

// Fetch scrapes the first page of news for the ticker. Missing pages
// and parse misses degrade to an empty slice, not an error.
func (s *Scraper) Fetch(ctx context.Context, ticker string) ([]types.NewsArticle, error) {
	ticker = types.NormalizeTicker(ticker)

	c := colly.NewCollector(
		colly.AllowedDomains("finance.naver.com"),
	)
	c.SetRequestTimeout(s.timeout)

	var articles []types.NewsArticle
	c.OnHTML("table.type5 tr", func(e *colly.HTMLElement) {
		if len(articles) >= s.maxArticles {
			return
		}
		link := e.DOM.Find("td.title a")
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		articles = append(articles, types.NewsArticle{
			Title:  title,
			Source: strings.TrimSpace(e.DOM.Find("td.info").Text()),
			Date:   strings.TrimSpace(e.DOM.Find("td.date").Text()),
			URL:    e.Request.AbsoluteURL(href),
		})
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	url := fmt.Sprintf(naverNewsURL, ticker)
	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, fetchErr)
	}

	logger.Debug(ctx, "Fetched news", "ticker", ticker, "articles", len(articles))
	return articles, nil
}
