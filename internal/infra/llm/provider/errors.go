package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

var (
	// ErrExhausted is returned when every model of a backend failed.
	ErrExhausted = errors.New("all models exhausted")

	// ErrQuotaExceeded marks a quota signal found inside an otherwise successful response.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrEmptyResponse is returned when a response carries no text payload.
	ErrEmptyResponse = errors.New("empty response")
)

// StatusError is a non-2xx HTTP response from a backend.
type StatusError struct {
	Backend    domain.BackendID
	Code       int
	Body       string
	RetryAfter string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Backend, e.Code, e.Body)
}

// ErrorAction determines how to handle a failed call.
type ErrorAction int

const (
	ActionNextModel ErrorAction = iota // Transport, server or parse issue: try the next model
	ActionEvict                        // Credential exhausted or rejected: evict it, then next model
	ActionAbort                        // Caller gave up: stop trying
)

func (a ErrorAction) String() string {
	switch a {
	case ActionEvict:
		return "evict"
	case ActionAbort:
		return "abort"
	default:
		return "next_model"
	}
}

var throttlePatterns = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"quota",
	"resource_exhausted",
	"resource exhausted",
	"insufficient credits",
	"limit exceeded",
}

// DetectThrottlePattern checks if a message contains a quota or rate-limit phrase.
func DetectThrottlePattern(message string) bool {
	lower := strings.ToLower(message)
	for _, pattern := range throttlePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionNextModel
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionAbort
	}

	if errors.Is(err, ErrQuotaExceeded) {
		return ActionEvict
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden, http.StatusPaymentRequired:
			return ActionEvict
		}
		if statusErr.Code < 500 && DetectThrottlePattern(statusErr.Body) {
			return ActionEvict
		}
		return ActionNextModel
	}

	return ActionNextModel
}
