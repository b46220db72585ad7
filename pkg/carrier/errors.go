package carrier

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a carrier failure.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindConfiguration      Kind = "configuration"
	KindAuth               Kind = "auth"
	KindNetwork            Kind = "network"
	KindTimeout            Kind = "timeout"
	KindRateLimited        Kind = "rate_limited"
	KindCarrierAPI         Kind = "carrier_api"
	KindCarrierUnavailable Kind = "carrier_unavailable"
	KindMalformedResponse  Kind = "malformed_response"
	KindUnknown            Kind = "unknown"
)

// Error is the single structured error type for every failure in the
// carrier core. Raw transport errors never escape the core boundary.
type Error struct {
	Kind            Kind
	Carrier         string
	Message         string
	HTTPStatus      int // upstream status, 0 if none
	UpstreamCode    string
	UpstreamMessage string
	Retryable       bool
	RetryAfter      time.Duration // only meaningful for rate_limited
	Timestamp       time.Time
	Cause           error
}

// NewError creates an Error with retryability fixed by kind.
func NewError(kind Kind, carrier, message string) *Error {
	return &Error{
		Kind:      kind,
		Carrier:   carrier,
		Message:   message,
		Retryable: retryableKind(kind),
		Timestamp: time.Now(),
	}
}

func retryableKind(kind Kind) bool {
	switch kind {
	case KindNetwork, KindTimeout, KindRateLimited:
		return true
	default:
		return false
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatus records the upstream HTTP status. For carrier_api errors
// retryability follows the status: 5xx is retryable, 4xx is not.
func (e *Error) WithStatus(status int) *Error {
	e.HTTPStatus = status
	if e.Kind == KindCarrierAPI {
		e.Retryable = status >= http.StatusInternalServerError
	}
	return e
}

// WithUpstream records the carrier-native error code and message.
func (e *Error) WithUpstream(code, message string) *Error {
	e.UpstreamCode = code
	e.UpstreamMessage = message
	return e
}

// WithRetryAfter records the carrier-requested backoff.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// AsError extracts a structured carrier Error from an error chain.
func AsError(err error) (*Error, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

// IsRetryable reports whether the error is worth retrying.
func IsRetryable(err error) bool {
	if cerr, ok := AsError(err); ok {
		return cerr.Retryable
	}
	return false
}

// Coerce returns err as a carrier Error, wrapping anything outside the
// taxonomy into an unknown-kind error tagged with the carrier id.
func Coerce(err error, carrier string) *Error {
	if cerr, ok := AsError(err); ok {
		return cerr
	}
	return NewError(KindUnknown, carrier, err.Error()).WithCause(err)
}
