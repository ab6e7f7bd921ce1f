// Package gateway implements the HTTP client for the WAHA WhatsApp gateway.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnexpectedStatus = errors.New("gateway returned unexpected status")
	ErrCircuitOpen      = errors.New("gateway unavailable: circuit breaker is open")
	ErrTooManyRequests  = errors.New("gateway unavailable: too many requests")
)

// StatusError carries the HTTP status of a non-2xx gateway response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s (%s)", ErrUnexpectedStatus, e.Code, http.StatusText(e.Code), e.Path)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// isGatewayFault tells the circuit breaker which failures count against the
// gateway. 4xx answers mean the gateway is up, so they do not trip it.
func isGatewayFault(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError
	}
	return true
}
