package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the bot configuration loaded from YAML.
type Config struct {
	// Mode selects the brokerage environment: "paper" or "live".
	Mode string `yaml:"mode"`

	// MaxAutoBuyQty caps auto-sized BUY orders. Defaults to 10 shares.
	MaxAutoBuyQty int `yaml:"max_auto_buy_qty"`

	// RequestTimeoutSeconds is the per-request HTTP timeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// LogRetentionDays is how many days of trade logs stay uncompressed.
	LogRetentionDays int `yaml:"log_retention_days"`

	Monitor MonitorConfig `yaml:"monitor"`
	News    NewsConfig    `yaml:"news"`
}

// MonitorConfig drives the position monitoring loop.
type MonitorConfig struct {
	// StopLossPct is the exit threshold on the downside, e.g. -5.0.
	StopLossPct float64 `yaml:"stop_loss_pct"`

	// TakeProfitPct is the exit threshold on the upside, e.g. 10.0.
	TakeProfitPct float64 `yaml:"take_profit_pct"`

	// IntervalSeconds is the sleep between polling iterations.
	IntervalSeconds int `yaml:"interval_seconds"`

	// MaxIterations bounds the loop. Zero means run until cancelled.
	MaxIterations int `yaml:"max_iterations"`

	// AutoExecute places SELL orders for triggered exits instead of
	// only reporting them.
	AutoExecute bool `yaml:"auto_execute"`
}

// NewsConfig drives the Naver Finance news fetcher.
type NewsConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxArticles    int  `yaml:"max_articles"`
	CacheMinutes   int  `yaml:"cache_minutes"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// DefaultConfig returns a config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Mode:                  "paper",
		MaxAutoBuyQty:         10,
		RequestTimeoutSeconds: 10,
		LogRetentionDays:      7,
		Monitor: MonitorConfig{
			StopLossPct:     -5.0,
			TakeProfitPct:   10.0,
			IntervalSeconds: 60,
			MaxIterations:   0,
			AutoExecute:     false,
		},
		News: NewsConfig{
			Enabled:        true,
			MaxArticles:    15,
			CacheMinutes:   60,
			TimeoutSeconds: 30,
		},
	}
}

// Load reads and validates a YAML config file. Missing fields fall back
// to defaults; a missing file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config file if it exists, otherwise returns
// defaults. Used by commands that should run without a config file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "paper"
	}
	if c.MaxAutoBuyQty == 0 {
		c.MaxAutoBuyQty = 10
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 10
	}
	if c.LogRetentionDays == 0 {
		c.LogRetentionDays = 7
	}
	if c.Monitor.IntervalSeconds == 0 {
		c.Monitor.IntervalSeconds = 60
	}
	if c.Monitor.StopLossPct == 0 {
		c.Monitor.StopLossPct = -5.0
	}
	if c.Monitor.TakeProfitPct == 0 {
		c.Monitor.TakeProfitPct = 10.0
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 15
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 60
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 30
	}
}

// Validate checks the config for values that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Mode != "paper" && c.Mode != "live" {
		return fmt.Errorf("mode must be \"paper\" or \"live\", got %q", c.Mode)
	}
	if c.MaxAutoBuyQty < 1 {
		return fmt.Errorf("max_auto_buy_qty must be positive, got %d", c.MaxAutoBuyQty)
	}
	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.LogRetentionDays < 1 {
		return fmt.Errorf("log_retention_days must be positive, got %d", c.LogRetentionDays)
	}
	if c.Monitor.StopLossPct >= 0 {
		return fmt.Errorf("monitor.stop_loss_pct must be negative, got %v", c.Monitor.StopLossPct)
	}
	if c.Monitor.TakeProfitPct <= 0 {
		return fmt.Errorf("monitor.take_profit_pct must be positive, got %v", c.Monitor.TakeProfitPct)
	}
	if c.Monitor.IntervalSeconds < 1 {
		return fmt.Errorf("monitor.interval_seconds must be positive, got %d", c.Monitor.IntervalSeconds)
	}
	if c.Monitor.MaxIterations < 0 {
		return fmt.Errorf("monitor.max_iterations must be >= 0, got %d", c.Monitor.MaxIterations)
	}
	return nil
}

// RequestTimeout returns the HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// MonitorInterval returns the polling interval as a duration.
func (c *MonitorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
