package service

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrNotConfigured     = errors.New("OpenAI API key not configured")
	ErrNoIngredients     = errors.New("please add at least one ingredient")
	ErrQuotaExceeded     = errors.New("OpenAI API quota exceeded")
	ErrInvalidCredential = errors.New("invalid OpenAI API key")
	ErrRateLimited       = errors.New("OpenAI rate limit exceeded")
	ErrInvalidResponse   = errors.New("invalid model response")
	ErrEmptyResponse     = fmt.Errorf("%w: no response received from OpenAI", ErrInvalidResponse)
	ErrUpstream          = errors.New("recipe generation failed")
)

// GenerationError is a classified failure of a generation request. Kind is one
// of the sentinel errors above; Cause is the underlying failure, if any.
type GenerationError struct {
	Kind  error
	Cause error
}

func (e *GenerationError) Error() string {
	return e.Message()
}

func (e *GenerationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Message is the text shown to the user
func (e *GenerationError) Message() string {
	switch e.Kind {
	case ErrNotConfigured:
		return "OpenAI API key not configured"
	case ErrNoIngredients:
		return "Please add at least one ingredient"
	case ErrQuotaExceeded:
		return "OpenAI API quota exceeded. Please check your billing details at https://platform.openai.com/account/usage or try again later."
	case ErrInvalidCredential:
		return "Invalid OpenAI API key. Please check your API key configuration."
	case ErrRateLimited:
		return "Rate limit exceeded. Please wait a moment and try again."
	}
	if e.Cause != nil {
		return "Failed to generate recipe: " + e.Cause.Error()
	}
	return "Failed to generate recipe"
}

func newGenerationError(kind, cause error) *GenerationError {
	return &GenerationError{Kind: kind, Cause: cause}
}

// classifyFailure maps a transport or API failure to a GenerationError
func classifyFailure(err error) *GenerationError {
	status := 0
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	// match on the cause only, the request URL may contain anything
	text := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		text = urlErr.Err.Error()
	}
	msg := strings.ToLower(text)

	switch {
	case status == http.StatusTooManyRequests || strings.Contains(msg, "429") || strings.Contains(msg, "quota"):
		return newGenerationError(ErrQuotaExceeded, err)
	case status == http.StatusUnauthorized || strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return newGenerationError(ErrInvalidCredential, err)
	case strings.Contains(msg, "rate limit"):
		return newGenerationError(ErrRateLimited, err)
	default:
		return newGenerationError(ErrUpstream, err)
	}
}
