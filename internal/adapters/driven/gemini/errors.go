package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// IsUnauthorized returns true if the API key was rejected.
func IsUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}

// wrapError converts a Google API failure into a *domain.ModelInvocationError,
// tagging rate limits and rejected keys with their domain sentinels.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var blocked *genai.BlockedError
	switch {
	case IsRateLimited(err):
		err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case IsUnauthorized(err):
		err = fmt.Errorf("API key rejected: %w", err)
	case errors.As(err, &blocked):
		err = fmt.Errorf("prompt or response blocked by safety filters: %w", err)
	}
	return &domain.ModelInvocationError{Provider: "gemini", Op: op, Err: err}
}
