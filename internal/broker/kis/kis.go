package kis

import (
	"fmt"
	"strings"
	"time"

	"kis-trading-bot/internal/api"
)

// Mode selects the brokerage environment.
type Mode string

const (
	ModePaper Mode = "paper"
	ModeLive  Mode = "live"
)

// Gateway hosts for each environment.
const (
	baseURLPaper = "https://openapivts.koreainvestment.com:29443"
	baseURLLive  = "https://openapi.koreainvestment.com:9443"
)

// BaseURL returns the gateway host for the mode.
func (m Mode) BaseURL() string {
	if m == ModeLive {
		return baseURLLive
	}
	return baseURLPaper
}

// ParseMode validates a mode string from config.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModePaper:
		return ModePaper, nil
	case ModeLive:
		return ModeLive, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want paper or live)", s)
	}
}

// Credentials identify an account at the brokerage.
type Credentials struct {
	AppKey        string
	AppSecret     string
	AccountPrefix string // 8-digit account number
	AccountSuffix string // 2-digit product code
}

// ParseAccount splits an "XXXXXXXX-XX" account string into its prefix
// and suffix parts.
func ParseAccount(account string) (prefix, suffix string, err error) {
	parts := strings.Split(account, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("account must look like XXXXXXXX-XX, got %q", account)
	}
	return parts[0], parts[1], nil
}

// Validate checks that all credential fields are present.
func (c Credentials) Validate() error {
	if c.AppKey == "" {
		return fmt.Errorf("app key is required")
	}
	if c.AppSecret == "" {
		return fmt.Errorf("app secret is required")
	}
	if c.AccountPrefix == "" || c.AccountSuffix == "" {
		return fmt.Errorf("account number is required")
	}
	return nil
}

// Transaction IDs. The paper gateway expects V-prefixed IDs, live the
// T-prefixed ones.
type trIDs struct {
	balance  string
	buyable  string
	orderBuy string
	orderSel string
}

var (
	trIDsPaper = trIDs{
		balance:  "VTTC8434R",
		buyable:  "VTTC8908R",
		orderBuy: "VTTC0802U",
		orderSel: "VTTC0801U",
	}
	trIDsLive = trIDs{
		balance:  "TTTC8434R",
		buyable:  "TTTC8908R",
		orderBuy: "TTTC0802U",
		orderSel: "TTTC0801U",
	}

	// Quotations share a single ID across environments.
	trIDPrice = "FHKST01010100"
)

func trIDsForMode(m Mode) trIDs {
	if m == ModeLive {
		return trIDsLive
	}
	return trIDsPaper
}

// Client talks to the KIS open API. It implements interfaces.Broker.
type Client struct {
	creds     Credentials
	mode      Mode
	trIDs     trIDs
	transport *transport
	session   *SessionManager
	limiter   *RateLimiter
}

// ClientOption configures the broker client.
type ClientOption func(*Client)

// WithRequestTimeout overrides the per-request HTTP timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.transport.http = api.NewClient(
			api.WithBaseURL(c.mode.BaseURL()),
			api.WithTimeout(d),
			api.WithLogging(true),
		)
	}
}

// WithBaseURL points the client at a different gateway. Used by tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.transport.http = api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(10*time.Second),
			api.WithLogging(true),
		)
	}
}

// NewClient builds a broker client for the given credentials and mode.
func NewClient(creds Credentials, mode Mode, opts ...ClientOption) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	limiter := NewRateLimiterForMode(mode)
	tr := newTransport(mode.BaseURL(), creds, limiter)
	c := &Client{
		creds:     creds,
		mode:      mode,
		trIDs:     trIDsForMode(mode),
		transport: tr,
		limiter:   limiter,
	}
	c.session = NewSessionManager(tr)
	tr.session = c.session

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Mode returns the environment this client targets.
func (c *Client) Mode() Mode {
	return c.mode
}

// RateStatus exposes the limiter state for diagnostics.
func (c *Client) RateStatus() (used, capacity int) {
	return c.limiter.Status()
}
