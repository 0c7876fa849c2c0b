package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "text", Message: "cannot be empty"}

	if !strings.Contains(err.Error(), "text") {
		t.Errorf("Error() = %q, want field name included", err.Error())
	}
	if !IsValidation(err) {
		t.Error("IsValidation should return true for ValidationError")
	}
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{Limit: 30, Window: time.Minute}

	if !strings.Contains(err.Error(), "30") {
		t.Errorf("Error() = %q, want limit included", err.Error())
	}
	if !IsRateLimit(err) {
		t.Error("IsRateLimit should return true for RateLimitError")
	}
	if IsValidation(err) {
		t.Error("IsValidation should return false for RateLimitError")
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &ProviderError{Provider: "sapling", Reason: "timeout", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("ProviderError should unwrap to the inner error")
	}
	if !IsProvider(err) {
		t.Error("IsProvider should return true for ProviderError")
	}
}

func TestIsProvider_WrappedError(t *testing.T) {
	err := &ProviderError{Provider: "hive", Reason: "bad response"}
	wrapped := fmt.Errorf("request failed: %w", err)

	if !IsProvider(wrapped) {
		t.Error("IsProvider should see through fmt.Errorf wrapping")
	}
}

func TestWrapError_NilError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError should return nil for nil error")
	}
}
