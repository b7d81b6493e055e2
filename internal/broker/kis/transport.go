package kis

import (
	"context"
	"fmt"
	"time"

	"kis-trading-bot/internal/api"
	"kis-trading-bot/internal/logger"
)

const (
	pathToken   = "/oauth2/tokenP"
	pathHashkey = "/uapi/hashkey"
	pathPrice   = "/uapi/domestic-stock/v1/quotations/inquire-price"
	pathBalance = "/uapi/domestic-stock/v1/trading/inquire-balance"
	pathBuyable = "/uapi/domestic-stock/v1/trading/inquire-psbl-order"
	pathOrder   = "/uapi/domestic-stock/v1/trading/order-cash"
)

// msg_cd EGW00201 marks a gateway-side rate limit trip. The local
// limiter should make this unreachable; it is warned about when seen.
const msgCdRateExceeded = "EGW00201"

// transport performs the wire exchanges with the gateway: rate
// limiting, auth headers, hashkey signing, and typed decoding. Every
// non-2xx status becomes a TransportError.
type transport struct {
	http    *api.Client
	creds   Credentials
	limiter *RateLimiter
	session *SessionManager // set by NewClient after construction
}

func newTransport(baseURL string, creds Credentials, limiter *RateLimiter) *transport {
	return &transport{
		http: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(10*time.Second),
			api.WithLogging(true),
		),
		creds:   creds,
		limiter: limiter,
	}
}

// issueToken exchanges app credentials for an access token. Runs
// through the rate limiter but carries no auth headers.
func (t *transport) issueToken(ctx context.Context) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     t.creds.AppKey,
		"appsecret":  t.creds.AppSecret,
	}
	resp, err := t.http.POST(ctx, pathToken, body)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if !resp.OK() {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: resp.String(), Endpoint: pathToken}
	}

	var tok tokenResponse
	if err := resp.ParseJSON(&tok); err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	logger.Info(ctx, "Access token issued", "expiresIn", tok.ExpiresIn)
	return tok.AccessToken, nil
}

// hashkey signs an order body with the gateway's hashkey service. The
// exchange uses app credentials only, no bearer token.
func (t *transport) hashkey(ctx context.Context, body interface{}) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	headers := map[string]string{
		"content-type": "application/json; charset=utf-8",
		"appkey":       t.creds.AppKey,
		"appsecret":    t.creds.AppSecret,
	}
	resp, err := t.http.POST(ctx, pathHashkey, body, headers)
	if err != nil {
		return "", fmt.Errorf("hashkey request: %w", err)
	}
	if !resp.OK() {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: resp.String(), Endpoint: pathHashkey}
	}

	var hk hashkeyResponse
	if err := resp.ParseJSON(&hk); err != nil {
		return "", fmt.Errorf("hashkey response: %w", err)
	}
	if hk.Hash == "" {
		return "", fmt.Errorf("hashkey response missing HASH")
	}
	return hk.Hash, nil
}

// authHeaders builds the standard authenticated header set for trID.
func (t *transport) authHeaders(ctx context.Context, trID string) (map[string]string, error) {
	token, err := t.session.Token(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"content-type":  "application/json; charset=utf-8",
		"authorization": "Bearer " + token,
		"appkey":        t.creds.AppKey,
		"appsecret":     t.creds.AppSecret,
		"tr_id":         trID,
	}, nil
}

// getJSON performs an authenticated GET and decodes into out.
func (t *transport) getJSON(ctx context.Context, path, trID string, query map[string]string, out interface{}) error {
	headers, err := t.authHeaders(ctx, trID)
	if err != nil {
		return err
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	req := api.NewRequest("GET", path).WithContext(ctx)
	for k, v := range headers {
		req.WithHeader(k, v)
	}
	for k, v := range query {
		req.WithQuery(k, v)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if !resp.OK() {
		return &TransportError{StatusCode: resp.StatusCode, Body: resp.String(), Endpoint: path}
	}
	return resp.ParseJSON(out)
}

// postJSON performs an authenticated POST, signing the body with a
// hashkey when sign is true, and decodes into out.
func (t *transport) postJSON(ctx context.Context, path, trID string, body interface{}, sign bool, out interface{}) error {
	headers, err := t.authHeaders(ctx, trID)
	if err != nil {
		return err
	}
	if sign {
		hash, err := t.hashkey(ctx, body)
		if err != nil {
			return err
		}
		headers["hashkey"] = hash
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	req := api.NewRequest("POST", path).WithContext(ctx).WithBody(body)
	for k, v := range headers {
		req.WithHeader(k, v)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	if !resp.OK() {
		return &TransportError{StatusCode: resp.StatusCode, Body: resp.String(), Endpoint: path}
	}
	return resp.ParseJSON(out)
}

// checkEnvelope converts a business-level failure into an error and
// flags gateway rate-limit trips.
func checkEnvelope(ctx context.Context, env apiEnvelope, ticker string) error {
	if env.ok() {
		return nil
	}
	if env.MsgCd == msgCdRateExceeded {
		logger.Warn(ctx, "Gateway rate limit tripped despite local limiter", "msgCd", env.MsgCd, "msg", env.Msg1)
	}
	return &OrderRejectedError{Ticker: ticker, Code: env.MsgCd, Message: env.Msg1}
}
