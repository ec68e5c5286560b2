package api

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failed upstream interaction. Handlers map kinds onto
// user-facing messages; retry logic uses them to decide what is transient.
type Kind int

const (
	// KindRateLimited means the local limiter or the upstream refused the
	// request for rate reasons. RetryAfter carries the earliest retry time.
	KindRateLimited Kind = iota + 1
	// KindUpstreamUnavailable means the upstream could not be reached or
	// answered with a server error after all attempts.
	KindUpstreamUnavailable
	// KindUpstreamRejected means the upstream understood the request and
	// refused it (bad credentials, malformed query).
	KindUpstreamRejected
	// KindParse means the upstream answered but the payload did not decode
	// into the expected shape.
	KindParse
	// KindNotFound means the requested entity does not exist upstream.
	KindNotFound
	// KindInvalidArgument means the caller's input failed validation before
	// any request was made.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamRejected:
		return "upstream_rejected"
	case KindParse:
		return "parse_error"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by the client. The credential is
// never part of the message.
type Error struct {
	Kind       Kind
	Endpoint   string
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Endpoint != "" {
		msg += " " + e.Endpoint
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err, or zero when err is not a client
// error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRateLimited reports whether err is a rate refusal.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// IsUnavailable reports whether err means the upstream could not serve.
func IsUnavailable(err error) bool {
	return KindOf(err) == KindUpstreamUnavailable
}

// StaleError marks a result served from an expired cache snapshot because
// the upstream could not answer. The result accompanying this error is
// usable; the wrapped error is the failure that forced the fallback.
type StaleError struct {
	Endpoint  string
	FetchedAt time.Time
	Err       error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("stale snapshot of %s from %s: %v", e.Endpoint, e.FetchedAt.Format(time.RFC3339), e.Err)
}

func (e *StaleError) Unwrap() error {
	return e.Err
}

// IsStale reports whether err marks a stale-but-present result.
func IsStale(err error) bool {
	var stale *StaleError
	return errors.As(err, &stale)
}

func newError(kind Kind, endpoint string, err error) *Error {
	return &Error{Kind: kind, Endpoint: endpoint, Err: err}
}

// InvalidArgument builds a pre-request validation failure.
func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Err: fmt.Errorf(format, args...)}
}
