package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingDocument   = errors.New("missing document")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrEmptyFile         = errors.New("empty file")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrParse             = errors.New("parse error")
	ErrEmptyDocument     = errors.New("empty document")
	ErrLLM               = errors.New("llm error")
)

// AppError carries the HTTP status and the message safe to show to a client.
// Cause is only logged.
type AppError struct {
	Status  int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(status int, message string, cause error) *AppError {
	return &AppError{Status: status, Message: message, Cause: cause}
}

func NewBadRequestError(message string, cause error) *AppError {
	return NewAppError(http.StatusBadRequest, message, cause)
}

// AsAppError returns err as an *AppError, wrapping anything unknown in a generic 500.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}

type llmErrorCategory struct {
	status   int
	message  string
	patterns []string
}

// Order matters: a quota error message may mention the API key.
var llmErrorCategories = []llmErrorCategory{
	{
		status:   http.StatusTooManyRequests,
		message:  "API quota exceeded. Please try again later.",
		patterns: []string{"quota", "resource_exhausted", "rate limit", "rate_limit", "too many requests", "error 429", "status 429"},
	},
	{
		status:   http.StatusUnauthorized,
		message:  "Invalid API key. Please check the AI service configuration.",
		patterns: []string{"api key", "api_key_invalid", "invalid_api_key", "incorrect api key", "permission_denied", "unauthenticated"},
	},
	{
		status:   http.StatusBadRequest,
		message:  "The content was blocked by the AI safety filters. Please review the document.",
		patterns: []string{"safety", "blocked", "content_filter"},
	},
}

// MapLLMError turns an error from the model provider into a user-facing AppError
// by matching substrings of its message.
func MapLLMError(err error) *AppError {
	if err == nil {
		return nil
	}

	text := strings.ToLower(err.Error())
	for _, category := range llmErrorCategories {
		for _, pattern := range category.patterns {
			if strings.Contains(text, pattern) {
				return NewAppError(category.status, category.message, errors.Join(ErrLLM, err))
			}
		}
	}

	return NewAppError(http.StatusInternalServerError, "Failed to analyze document. Please try again.", errors.Join(ErrLLM, err))
}

func unsupportedFormatError(filename string) *AppError {
	ext := fileExtension(filename)
	if ext == "" {
		ext = "(none)"
	}
	return NewBadRequestError(
		fmt.Sprintf("Unsupported file format %s for %q. Supported formats: PDF, DOCX, TXT", ext, filename),
		ErrUnsupportedFormat,
	)
}

func parseError(filename string, cause error) *AppError {
	return NewAppError(
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Failed to extract text from %q. The file may be corrupted or password protected.", filename),
		errors.Join(ErrParse, cause),
	)
}

func emptyDocumentError(filename string) *AppError {
	return NewAppError(
		http.StatusUnprocessableEntity,
		fmt.Sprintf("No text could be extracted from %q.", filename),
		ErrEmptyDocument,
	)
}
