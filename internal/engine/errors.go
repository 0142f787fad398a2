// Package engine provides the reasoning-loop orchestration core.
// This file contains error types and retry classification.

package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies a provider failure for the retry layer.
type ErrorKind string

const (
	// ErrorKindTransient errors (connection resets, timeouts, 429s, 5xx)
	// are retried with backoff.
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindTerminal errors fail the step on first occurrence.
	ErrorKindTerminal ErrorKind = "terminal"
)

// ProviderError wraps a model-endpoint failure with a typed kind so the
// retry layer does not have to guess from message text.
type ProviderError struct {
	Err        error
	Kind       ErrorKind
	HTTPStatus int
	RetryAfter string // Retry-After header value if the provider sent one
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("provider error: %s", e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapProviderError classifies err by HTTP status and wraps it. Providers
// call this at their boundary so the loop sees typed kinds.
func WrapProviderError(err error, httpStatus int, retryAfter string) error {
	if err == nil {
		return nil
	}
	kind := ErrorKindTerminal
	switch {
	case httpStatus == http.StatusTooManyRequests,
		httpStatus == http.StatusRequestTimeout,
		httpStatus >= 500,
		httpStatus == 0 && classifyByMessage(err) == ErrorKindTransient:
		kind = ErrorKindTransient
	}
	return &ProviderError{
		Err:        err,
		Kind:       kind,
		HTTPStatus: httpStatus,
		RetryAfter: retryAfter,
	}
}

// ClassifyModelError returns the retry kind for an error from a model call.
// Typed ProviderErrors are authoritative; message-text matching is only a
// fallback for errors that arrive untyped (e.g. straight from net/http).
func ClassifyModelError(err error) ErrorKind {
	if err == nil {
		return ErrorKindTerminal
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return classifyByMessage(err)
}

func classifyByMessage(err error) ErrorKind {
	errStr := strings.ToLower(err.Error())

	// Rate limits and server errors.
	if strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "gateway timeout") {
		return ErrorKindTransient
	}

	// Network-class failures.
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "temporary failure") {
		return ErrorKindTransient
	}

	return ErrorKindTerminal
}

// ExtractRetryAfter extracts a Retry-After duration from a wrapped provider
// error. Returns 0 if absent or unparsable.
func ExtractRetryAfter(err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.RetryAfter != "" {
		var seconds int
		if _, serr := fmt.Sscanf(pe.RetryAfter, "%d", &seconds); serr == nil {
			return time.Duration(seconds) * time.Second
		}
		if t, terr := time.Parse(time.RFC1123, pe.RetryAfter); terr == nil {
			if now := time.Now(); t.After(now) {
				return t.Sub(now)
			}
		}
	}
	return 0
}

// RetryExhaustedError indicates all retry attempts were spent.
type RetryExhaustedError struct {
	Err      error
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// IsRetryExhausted reports whether err is (or wraps) a RetryExhaustedError.
func IsRetryExhausted(err error) bool {
	var re *RetryExhaustedError
	return errors.As(err, &re)
}

// ToolValidationError indicates tool arguments failed JSON schema validation.
type ToolValidationError struct {
	ToolName string
	Errors   []string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("tool %s validation failed: %s", e.ToolName, strings.Join(e.Errors, "; "))
}

// StepError wraps a failure with the 1-indexed step it occurred in.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ErrEmptyResponse is returned when a model response carries neither text
// nor tool calls. It is never retried.
var ErrEmptyResponse = errors.New("model response contained no text and no tool calls")
