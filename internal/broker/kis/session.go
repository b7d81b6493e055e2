package kis

import (
	"context"
	"sync"
	"time"
)

const (
	// tokenLifetime is how long an issued access token is trusted
	// locally, regardless of what the gateway reports.
	tokenLifetime = 23 * time.Hour

	// renewalMargin renews the token this long before it would lapse,
	// so no request goes out with a token about to expire.
	renewalMargin = 1 * time.Hour
)

// tokenIssuer obtains a fresh access token from the gateway.
type tokenIssuer interface {
	issueToken(ctx context.Context) (string, error)
}

// SessionManager caches the access token and coalesces concurrent
// renewals: one caller performs the network exchange while the rest
// wait for its outcome.
type SessionManager struct {
	issuer tokenIssuer

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	renewal   chan struct{} // non-nil while a renewal is in flight
	renewErr  error

	now func() time.Time
}

// NewSessionManager wraps a token issuer with caching and single-flight
// renewal.
func NewSessionManager(issuer tokenIssuer) *SessionManager {
	return &SessionManager{
		issuer: issuer,
		now:    time.Now,
	}
}

// Token returns a valid access token, renewing it when within the
// renewal margin of expiry. Concurrent callers share one renewal.
func (s *SessionManager) Token(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if s.token != "" && s.now().Before(s.expiresAt.Add(-renewalMargin)) {
			tok := s.token
			s.mu.Unlock()
			return tok, nil
		}

		if s.renewal != nil {
			// Another caller is already renewing. Wait for it and
			// share its outcome.
			done := s.renewal
			s.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return "", ctx.Err()
			}
			s.mu.Lock()
			err := s.renewErr
			s.mu.Unlock()
			if err != nil {
				return "", err
			}
			continue
		}

		// Become the renewing caller. The network exchange happens
		// outside the lock.
		done := make(chan struct{})
		s.renewal = done
		s.renewErr = nil
		s.mu.Unlock()

		tok, err := s.issuer.issueToken(ctx)

		s.mu.Lock()
		if err != nil {
			s.renewErr = &AuthenticationError{Err: err}
		} else {
			s.token = tok
			s.expiresAt = s.now().Add(tokenLifetime)
			s.renewErr = nil
		}
		s.renewal = nil
		close(done)
		renewErr := s.renewErr
		s.mu.Unlock()

		if renewErr != nil {
			return "", renewErr
		}
		return tok, nil
	}
}

// Invalidate discards the cached token so the next call renews.
func (s *SessionManager) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}
