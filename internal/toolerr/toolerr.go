// Package toolerr defines the closed error taxonomy every tool invocation
// resolves into. Nothing outside this set ever reaches the host: upstream
// failures, transport faults, and bad arguments are all translated here at
// the boundary of a single call.
package toolerr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a tool failure.
type Kind int

const (
	// Configuration: a required credential or default is missing locally.
	Configuration Kind = iota
	// Authentication: upstream rejected the supplied credentials.
	Authentication
	// Validation: caller-supplied arguments failed schema constraints.
	Validation
	// NotFound: upstream reports no matching resource.
	NotFound
	// RateLimit: upstream signalled quota exhaustion.
	RateLimit
	// Upstream: any other non-2xx or malformed upstream response.
	Upstream
	// Network: timeout, DNS, or connection failure reaching upstream.
	Network
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Authentication:
		return "authentication"
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case RateLimit:
		return "rate_limit"
	case Upstream:
		return "upstream"
	case Network:
		return "network"
	}
	return "unknown"
}

// Error is a classified tool failure with a user-facing message. The message
// never contains secrets or raw upstream payloads.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Configurationf(format string, args ...any) *Error {
	return New(Configuration, format, args...)
}

func Validationf(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

// KindOf returns the classification of err, or Upstream for anything that is
// not a *Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return Upstream
}

// FromStatus maps an upstream HTTP status onto the taxonomy. rateLimitStatuses
// is per-integration data: every current integration treats only 429 as quota
// exhaustion, but the set is configurable because upstream conventions differ.
func FromStatus(status int, rateLimitStatuses []int) *Error {
	for _, s := range rateLimitStatuses {
		if status == s {
			return New(RateLimit, "rate limit exceeded; wait before making more requests")
		}
	}
	switch status {
	case 401, 403:
		return New(Authentication, "authentication failed: upstream rejected the credentials (HTTP %d)", status)
	case 404:
		return New(NotFound, "resource not found; check the identifier and try again")
	case 429:
		return New(RateLimit, "rate limit exceeded; wait before making more requests")
	case 400:
		return New(Upstream, "upstream rejected the request as malformed (HTTP 400); check the parameters")
	default:
		return New(Upstream, "upstream request failed with status %d", status)
	}
}

// FromTransport classifies a failure that happened before any HTTP status was
// received: timeouts, DNS errors, refused connections, cancelled contexts.
func FromTransport(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return New(Network, "request timed out; try again")
	case errors.Is(err, context.Canceled):
		return New(Network, "request cancelled")
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return New(Network, "request timed out; try again")
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return New(Network, "could not resolve the upstream host; check the network")
	}
	return New(Network, "could not reach the upstream host; check the network")
}
