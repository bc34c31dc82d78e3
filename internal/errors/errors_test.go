package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "test-endpoint", "test API error")

	expected := "API error [400] at test-endpoint: test API error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "test-endpoint", "boom")
	if noStatus.Error() != "API error at test-endpoint: boom" {
		t.Errorf("Error() = %s", noStatus.Error())
	}

	withBody := NewAPIErrorWithBody(500, "ep", "failed", `{"error":{}}`)
	if withBody.Body != `{"error":{}}` {
		t.Errorf("Body = %q", withBody.Body)
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("generate content", "https://example.test", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}
	if !IsNetworkError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsNetworkError should see through wrapping")
	}
	if IsNetworkError(errors.New("other")) {
		t.Error("plain error is not a network error")
	}
	if IsNetworkError(nil) {
		t.Error("nil is not a network error")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("test timeout error")

	expected := "request timed out: test timeout error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if NewTimeoutError("").Error() != "request timed out" {
		t.Errorf("empty message Error() = %s", NewTimeoutError("").Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should match context.DeadlineExceeded")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("unexpected token", "")
	if err.Error() != "parse error: unexpected token" {
		t.Errorf("Error() = %s", err.Error())
	}

	withPath := NewParseError("missing", "candidates.0")
	if withPath.Error() != "parse error at candidates.0: missing" {
		t.Errorf("Error() = %s", withPath.Error())
	}

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ParseError should match ErrInvalidResponse")
	}
	if errors.Is(err, ErrNoContent) {
		t.Error("ParseError should not match ErrNoContent")
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout error", NewTimeoutError("x"), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.want {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		auth      bool
		rateLimit bool
	}{
		{"unauthorized", NewAPIError(401, "ep", "x"), 401, true, false},
		{"forbidden", NewAPIError(403, "ep", "x"), 403, true, false},
		{"throttled", fmt.Errorf("wrap: %w", NewAPIError(429, "ep", "x")), 429, false, true},
		{"server", NewAPIError(500, "ep", "x"), 500, false, false},
		{"not api", errors.New("x"), 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.status {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.status)
			}
			if got := IsAuthError(tt.err); got != tt.auth {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.auth)
			}
			if got := IsRateLimitError(tt.err); got != tt.rateLimit {
				t.Errorf("IsRateLimitError() = %v, want %v", got, tt.rateLimit)
			}
		})
	}
}

func TestGetEndpoint(t *testing.T) {
	if got := GetEndpoint(NewAPIError(500, "api-ep", "x")); got != "api-ep" {
		t.Errorf("GetEndpoint(APIError) = %q", got)
	}
	if got := GetEndpoint(NewNetworkError("op", "net-ep", errors.New("x"))); got != "net-ep" {
		t.Errorf("GetEndpoint(NetworkError) = %q", got)
	}
	if got := GetEndpoint(errors.New("x")); got != "" {
		t.Errorf("GetEndpoint(plain) = %q", got)
	}
}
