package news

import (
	"context"
	"testing"
	"time"

	"kis-trading-bot/internal/types"
)

func TestDefaultServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()
	if !cfg.Enabled {
		t.Fatal("expected enabled by default")
	}
	if cfg.MaxArticles != 15 {
		t.Fatalf("MaxArticles = %d, want 15", cfg.MaxArticles)
	}
	if cfg.CacheDuration != time.Hour {
		t.Fatalf("CacheDuration = %v, want 1h", cfg.CacheDuration)
	}
	if cfg.ScraperTimeout != 30*time.Second {
		t.Fatalf("ScraperTimeout = %v, want 30s", cfg.ScraperTimeout)
	}
}

func TestNewService(t *testing.T) {
	s := NewService(DefaultServiceConfig())
	if s.scraper == nil {
		t.Fatal("scraper not initialized")
	}
	if s.cache == nil {
		t.Fatal("cache not initialized")
	}
}

func TestDisabledServiceReturnsNothing(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.Enabled = false
	s := NewService(cfg)

	articles, err := s.Headlines(context.Background(), "005930")
	if err != nil {
		t.Fatal(err)
	}
	if articles != nil {
		t.Fatalf("disabled service returned %v", articles)
	}
}

func TestArticleCacheSetGet(t *testing.T) {
	c := newArticleCache(time.Hour)
	want := []types.NewsArticle{{Title: "Samsung beats estimates"}}
	c.set("005930", want)

	got, ok := c.get("005930")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if len(got) != 1 || got[0].Title != want[0].Title {
		t.Fatalf("got %v", got)
	}

	if _, ok := c.get("000660"); ok {
		t.Fatal("unexpected hit for a different ticker")
	}
}

func TestArticleCacheExpires(t *testing.T) {
	c := newArticleCache(time.Hour)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.set("005930", []types.NewsArticle{{Title: "stale"}})

	now = now.Add(59 * time.Minute)
	if _, ok := c.get("005930"); !ok {
		t.Fatal("entry expired inside the TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.get("005930"); ok {
		t.Fatal("entry survived past the TTL")
	}
}
