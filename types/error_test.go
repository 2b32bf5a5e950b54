package types

import (
	"errors"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("openai")

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestNewErrorf(t *testing.T) {
	t.Parallel()

	err := NewErrorf(ErrToolNotFound, "tool %q not found", "search")
	if err.Message != `tool "search" not found` {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if GetErrorCode(err) != ErrToolNotFound {
		t.Fatalf("unexpected code: %s", GetErrorCode(err))
	}
}
