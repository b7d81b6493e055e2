package news

import (
	"context"
	"sync"
	"time"

	"kis-trading-bot/internal/types"
)

// ServiceConfig tunes the news service.
type ServiceConfig struct {
	Enabled        bool
	MaxArticles    int
	CacheDuration  time.Duration
	ScraperTimeout time.Duration
}

// DefaultServiceConfig returns the standard settings.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Enabled:        true,
		MaxArticles:    15,
		CacheDuration:  time.Hour,
		ScraperTimeout: 30 * time.Second,
	}
}

// Service fetches ticker headlines with a per-ticker TTL cache in
// front of the scraper.
type Service struct {
	scraper *Scraper
	cache   *articleCache
	cfg     ServiceConfig
}

// NewService builds a news service from the config.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		scraper: NewScraper(cfg.ScraperTimeout, cfg.MaxArticles),
		cache:   newArticleCache(cfg.CacheDuration),
		cfg:     cfg,
	}
}

// Headlines returns recent articles for a ticker, served from cache
// within the TTL. A disabled service returns nil without error.
func (s *Service) Headlines(ctx context.Context, ticker string) ([]types.NewsArticle, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}
	ticker = types.NormalizeTicker(ticker)

	if articles, ok := s.cache.get(ticker); ok {
		return articles, nil
	}

	articles, err := s.scraper.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	s.cache.set(ticker, articles)
	return articles, nil
}

// articleCache is a TTL cache keyed by ticker.
type articleCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	articles []types.NewsArticle
	storedAt time.Time
}

func newArticleCache(ttl time.Duration) *articleCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &articleCache{
		ttl: ttl,
		m:   make(map[string]cacheEntry),
		now: time.Now,
	}
}

func (c *articleCache) get(ticker string) ([]types.NewsArticle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[ticker]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.articles, true
}

func (c *articleCache) set(ticker string, articles []types.NewsArticle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[ticker] = cacheEntry{articles: articles, storedAt: c.now()}
}
