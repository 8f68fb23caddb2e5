package httpapi

import (
	"errors"
	"net/http"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
	var unsupported *domain.UnsupportedFormatError
	var decode *domain.DecodeError

	switch {
	case errors.As(err, &unsupported), errors.As(err, &decode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrVectorIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON detail with the mapped status.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeStatus(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
