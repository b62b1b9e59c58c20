package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExchangeError(t *testing.T) {
	cause := NewNetworkErrorWithEndpoint("chat", "http://localhost:8000/chat", errors.New("connection refused"))
	err := NewExchangeError(cause)

	if !errors.Is(err, ErrExchangeFailed) {
		t.Error("ExchangeError should match ErrExchangeFailed")
	}
	if !IsExchangeFailed(err) {
		t.Error("IsExchangeFailed() should be true")
	}
	if !IsNetworkError(err) {
		t.Error("cause should be reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should mention the cause, got %s", err.Error())
	}

	wrapped := fmt.Errorf("sending: %w", err)
	if !IsExchangeFailed(wrapped) {
		t.Error("wrapped ExchangeError should still match")
	}
}

func TestExchangeError_NilCause(t *testing.T) {
	err := &ExchangeError{}
	if err.Error() != "exchange failed" {
		t.Errorf("Error() = %s, want 'exchange failed'", err.Error())
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(500, "test-endpoint", "test API error")

	expected := "API error [500] at test-endpoint: test API error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "test-endpoint", "oops")
	if noStatus.Error() != "API error at test-endpoint: oops" {
		t.Errorf("Error() = %s", noStatus.Error())
	}

	if GetHTTPStatus(NewExchangeError(err)) != 500 {
		t.Error("GetHTTPStatus should see through ExchangeError")
	}
	if GetEndpoint(NewExchangeError(err)) != "test-endpoint" {
		t.Error("GetEndpoint should see through ExchangeError")
	}
}

func TestAPIError_WithBodyTruncates(t *testing.T) {
	err := NewAPIError(502, "e", "bad gateway").WithBody(strings.Repeat("x", 5000))
	if len(err.Body) != 4096 {
		t.Errorf("body length = %d, want 4096", len(err.Body))
	}
	if GetResponseBody(err) == "" {
		t.Error("GetResponseBody should return the body")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("test timeout error")

	expected := "request timed out: test timeout error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if NewTimeoutError("").Error() != "request timed out" {
		t.Error("empty message should use default text")
	}

	if !IsTimeoutError(NewExchangeError(err)) {
		t.Error("IsTimeoutError should see through ExchangeError")
	}
	if !IsTimeoutError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)) {
		t.Error("context.DeadlineExceeded should count as a timeout")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing text", "text")

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}
	if !IsParseError(NewExchangeError(err)) {
		t.Error("IsParseError should see through ExchangeError")
	}
	if !strings.Contains(err.Error(), `"text"`) {
		t.Errorf("Error() should include the path, got %s", err.Error())
	}
	if NewParseError("bad json", "").Error() != "parse error: bad json" {
		t.Errorf("unexpected message %s", NewParseError("bad json", "").Error())
	}
}

func TestAudioError(t *testing.T) {
	err := NewAudioError("fetch", "/audios/1.mp3", errors.New("404"))

	if !IsAudioError(err) {
		t.Error("IsAudioError() should be true")
	}
	if IsExchangeFailed(err) {
		t.Error("audio failures are not exchange failures")
	}
	expected := "audio fetch failed for /audios/1.mp3: 404"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestHelpers_Nil(t *testing.T) {
	if IsExchangeFailed(nil) || IsNetworkError(nil) || IsTimeoutError(nil) || IsParseError(nil) {
		t.Error("helpers should be false for nil")
	}
	if GetHTTPStatus(nil) != 0 || GetEndpoint(nil) != "" || GetResponseBody(nil) != "" {
		t.Error("getters should return zero values for nil")
	}
}
