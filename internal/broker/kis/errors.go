package kis

import (
	"errors"
	"fmt"
)

// TransportError is returned when the brokerage API answers with a
// non-2xx HTTP status. The body is kept verbatim for diagnosis.
type TransportError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("brokerage API %s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// AuthenticationError wraps failures to obtain or renew an access token.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// OrderRejectedError is returned when the brokerage accepts the HTTP
// exchange but rejects the order at the business level (rt_cd != "0").
// Rejections are terminal and must not be retried.
type OrderRejectedError struct {
	Ticker  string
	Code    string
	Message string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order for %s rejected (%s): %s", e.Ticker, e.Code, e.Message)
}

// IsRejected reports whether err is an order rejection, which callers
// must treat as final.
func IsRejected(err error) bool {
	var rej *OrderRejectedError
	return errors.As(err, &rej)
}
