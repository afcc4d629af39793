package llm

import (
	"errors"
	"fmt"
)

// APIError is a failed upstream call. StatusCode is 0 for transport
// failures. Transient failures (429, 503, transport) are retried;
// everything else fails the attempt loop immediately.
type APIError struct {
	StatusCode int
	Transient  bool
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("llm: request failed: %v", e.Err)
	case e.Body != "":
		return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("llm: upstream status %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// ErrNoResponse means the call succeeded but the expected reply-text
// path (candidates[0].content.parts[0].text) was absent or empty.
var ErrNoResponse = errors.New("llm: response contained no candidate text")

// RetriesExhaustedError wraps the last error observed after the attempt
// ceiling was reached.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("llm: giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }
