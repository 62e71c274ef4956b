package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kinds returned by Kind.
const (
	KindConfiguration = "configuration"
	KindValidation    = "payload_validation"
	KindAPIResponse   = "api_response"
	KindTransport     = "transport"
	KindEncoding      = "encoding"
	KindInternal      = "internal"
)

// ConfigurationError reports missing or invalid setup. It is fatal and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// PayloadValidationError is raised before any network call when an outgoing
// payload (or an inbound callback) does not satisfy its rules.
type PayloadValidationError struct {
	Message string
	// Fields maps a concrete field path (e.g. "products.0.count") to the
	// messages of every constraint it violated.
	Fields map[string][]string
}

func (e *PayloadValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(keys, ", "))
}

// NewPayloadValidationError builds the error from collected field messages.
func NewPayloadValidationError(fields map[string][]string) *PayloadValidationError {
	return &PayloadValidationError{Message: "Payload validation failed.", Fields: fields}
}

// APIResponseError is a non-2xx answer from the remote API.
type APIResponseError struct {
	StatusCode int
	// Message is the best-effort "message" field of the error body.
	Message string
}

func (e *APIResponseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Monobank API returned an error."
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, msg)
}

// Retryable reports whether repeating the call could succeed (429 and 5xx).
func (e *APIResponseError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// TransportError wraps network-level failures: timeouts, refused
// connections, unreadable bodies, an open circuit breaker.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error { return e.Cause }

// NewTransportError wraps cause.
func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{Message: message, Cause: cause}
}

// EncodingError is returned when a payload cannot be canonically encoded.
type EncodingError struct {
	Cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("payload encoding failed: %v", e.Cause)
}

func (e *EncodingError) Unwrap() error { return e.Cause }

// Kind classifies err without comparing messages.
func Kind(err error) string {
	var (
		cfgErr *ConfigurationError
		valErr *PayloadValidationError
		apiErr *APIResponseError
		trErr  *TransportError
		encErr *EncodingError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &apiErr):
		return KindAPIResponse
	case errors.As(err, &trErr):
		return KindTransport
	case errors.As(err, &encErr):
		return KindEncoding
	default:
		return KindInternal
	}
}

// IsRetryable reports whether err is worth retrying. The client itself never
// retries; this is for callers that implement their own policy.
func IsRetryable(err error) bool {
	var apiErr *APIResponseError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var trErr *TransportError
	return errors.As(err, &trErr)
}

// ExitCode maps an error to a process exit status for command-line use.
func ExitCode(err error) int {
	switch Kind(err) {
	case "":
		return 0
	case KindConfiguration, KindValidation:
		return 2
	case KindAPIResponse:
		return 3
	case KindTransport:
		return 4
	default:
		return 1
	}
}
