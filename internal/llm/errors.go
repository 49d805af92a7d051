package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit indicates the vendor returned a rate limit error (429).
// Retryable; RetryAfter, when set, is honored by the retry decorator.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrModelRejected indicates the vendor explicitly refused the request:
// bad API key, exhausted quota, malformed request. Treated as
// non-transient — retrying the same request cannot succeed.
type ErrModelRejected struct {
	StatusCode int
	Err        error
}

func (e *ErrModelRejected) Error() string {
	return fmt.Sprintf("model rejected request (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrModelRejected) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that is not
// valid JSON or does not conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the vendor is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated at the
// MaxTokens limit. A configuration issue, not transient.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated: max tokens exceeded"
}
