package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeInvalidInput,
				Message: "request body must be a JSON object",
			},
			expected: "INVALID_INPUT: request body must be a JSON object",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "failed to save booking",
				Err:     errors.New("permission denied"),
			},
			expected: "INTERNAL_ERROR: failed to save booking (caused by: permission denied)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Internal("wrapped", originalErr)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the original error")
	}
}

func TestAppError_StatusCode(t *testing.T) {
	err := InvalidInput("bad")
	if err.StatusCode() != http.StatusBadRequest {
		t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusBadRequest)
	}

	zero := &AppError{Code: CodeInternal}
	if zero.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() with no status = %d, want 500", zero.StatusCode())
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"validation", Validation("invalid", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"too large", TooLarge(1024), CodeTooLarge, http.StatusRequestEntityTooLarge},
		{"internal", Internal("failed", cause), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusServiceUnavailable},
		{"unavailable", Unavailable("Booking store"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestTooLarge_Message(t *testing.T) {
	err := TooLarge(2048)
	if !strings.Contains(err.Message, "2048") {
		t.Errorf("expected limit in message, got %s", err.Message)
	}
}

func TestUnavailable_Message(t *testing.T) {
	err := Unavailable("Booking store")
	if err.Message != "Booking store is temporarily unavailable" {
		t.Errorf("expected message to contain service name, got %s", err.Message)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := InvalidInput("bad")
	regularErr := errors.New("regular error")

	if result := AsAppError(appErr); result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}
	if result := AsAppError(fmt.Errorf("service: %w", appErr)); result != appErr {
		t.Errorf("AsAppError() should unwrap to the AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}
