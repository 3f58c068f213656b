package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestMapLLMError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "gemini invalid key",
			err:        errors.New("Error 400, Message: API key not valid. Please pass a valid API key., Status: INVALID_ARGUMENT"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "openai invalid key",
			err:        errors.New("401 invalid_api_key Incorrect API key provided"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrapped genai quota error",
			err: fmt.Errorf("failed to generate text: %w", genai.APIError{
				Code:    429,
				Message: "You exceeded your current quota",
				Status:  "RESOURCE_EXHAUSTED",
			}),
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "quota wins over api key mention",
			err:        errors.New("Quota exceeded for this API key"),
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "safety block",
			err:        errors.New("response blocked by safety filters: SAFETY"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "openai content filter",
			err:        errors.New("response blocked by content_filter"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anything else",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapLLMError(tt.err)

			if appErr.Status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (message %q)", appErr.Status, tt.wantStatus, appErr.Message)
			}
			if !errors.Is(appErr, ErrLLM) {
				t.Errorf("expected mapped error to wrap ErrLLM")
			}
			if !errors.Is(appErr, tt.err) {
				t.Errorf("expected mapped error to wrap the original error")
			}
		})
	}
}

func TestMapLLMError_Nil(t *testing.T) {
	if MapLLMError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestAsAppError(t *testing.T) {
	original := NewBadRequestError("bad input", ErrInvalidPayload)
	wrapped := fmt.Errorf("handler: %w", original)

	if got := AsAppError(wrapped); got != original {
		t.Fatalf("expected the wrapped AppError back, got %#v", got)
	}

	generic := AsAppError(errors.New("boom"))
	if generic.Status != http.StatusInternalServerError {
		t.Errorf("expected 500 for unknown errors, got %d", generic.Status)
	}
	if generic.Message != "Internal server error" {
		t.Errorf("unknown error details must not leak, got %q", generic.Message)
	}
}
