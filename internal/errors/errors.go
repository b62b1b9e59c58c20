// Package errors provides custom error types for the Fureal chat client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for common cases
var (
	ErrExchangeFailed  = errors.New("exchange failed")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoAudio         = errors.New("message has no audio")
	ErrNoPlayer        = errors.New("no audio player available")
)

// ExchangeError is the single failure kind of a chat exchange.
// It wraps the network, status, timeout or decoding cause.
type ExchangeError struct {
	Seq   uint64
	Cause error
}

func (e *ExchangeError) Error() string {
	if e.Cause == nil {
		return ErrExchangeFailed.Error()
	}
	return fmt.Sprintf("exchange failed: %v", e.Cause)
}

// Unwrap returns the underlying cause
func (e *ExchangeError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *ExchangeError) Is(target error) bool {
	if target == ErrExchangeFailed {
		return true
	}
	_, ok := target.(*ExchangeError)
	return ok
}

// NewExchangeError wraps cause as an exchange failure
func NewExchangeError(cause error) *ExchangeError {
	return &ExchangeError{Cause: cause}
}

// APIError represents a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// WithBody attaches a (truncated) response body for diagnostics
func (e *APIError) WithBody(body string) *APIError {
	const maxBody = 4096
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	e.Body = body
	return e
}

// NetworkError represents a transport failure before any response arrived
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkErrorWithEndpoint creates a NetworkError for a specific endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response decoding failure
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %q: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// AudioError represents a failure to fetch or play synthesized speech
type AudioError struct {
	Ref   string
	Stage string // "resolve", "fetch" or "play"
	Cause error
}

func (e *AudioError) Error() string {
	return fmt.Sprintf("audio %s failed for %s: %v", e.Stage, e.Ref, e.Cause)
}

// Unwrap returns the underlying cause
func (e *AudioError) Unwrap() error {
	return e.Cause
}

// NewAudioError creates a new AudioError
func NewAudioError(stage, ref string, cause error) *AudioError {
	return &AudioError{Ref: ref, Stage: stage, Cause: cause}
}

// IsExchangeFailed reports whether err is a chat exchange failure
func IsExchangeFailed(err error) bool {
	return errors.Is(err, ErrExchangeFailed)
}

// IsNetworkError reports whether err was caused by the transport
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err was caused by a deadline
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsParseError reports whether err was caused by an undecodable response
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsAudioError reports whether err came from audio playback
func IsAudioError(err error) bool {
	var audioErr *AudioError
	return errors.As(err, &audioErr)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the diagnostic body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
