package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindBadRequest   ErrorKind = "bad_request"
	KindRateLimited  ErrorKind = "rate_limited"
	KindServerError  ErrorKind = "server_error"
	KindNetworkError ErrorKind = "network_error"
	KindTimeout      ErrorKind = "timeout"
)

// EndpointError is a failure reported by, or on the way to, the model endpoint.
type EndpointError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *EndpointError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model endpoint %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model endpoint %s: %v", e.Kind, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }

func (e *EndpointError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServerError, KindNetworkError, KindTimeout:
		return true
	default:
		return false
	}
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindUnauthorized
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindServerError
	case code >= 400:
		return KindBadRequest
	default:
		return KindNetworkError
	}
}

// statusError builds an EndpointError from an HTTP status the SDK surfaced.
func statusError(code int, err error) *EndpointError {
	return &EndpointError{Kind: kindForStatus(code), StatusCode: code, Err: err}
}

// classifyTransport handles errors that carry no HTTP status. Cancellation is
// returned untouched so callers can tell a client disconnect from a failure.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var ee *EndpointError
	if errors.As(err, &ee) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &EndpointError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &EndpointError{Kind: KindTimeout, Err: err}
	}
	return &EndpointError{Kind: KindNetworkError, Err: err}
}
