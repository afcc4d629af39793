package llm

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds upstream attempts with exponential backoff.
// Sleep is swappable so tests run without real delay.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before the second attempt
	Sleep       func(context.Context, time.Duration)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Delay returns BaseDelay * 2^(attempt-1) for the wait after the given
// 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(1<<(attempt-1))
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Do runs fn up to MaxAttempts times. Only transient APIErrors are
// retried; any other error is returned as-is. Once attempts are
// exhausted the last transient error is wrapped in
// RetriesExhaustedError.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	max := p.MaxAttempts
	if max < 1 {
		max = 1
	}

	var last error
	for attempt := 1; attempt <= max; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var ae *APIError
		if !errors.As(err, &ae) || !ae.Transient {
			return err
		}
		last = err

		if attempt == max {
			break
		}
		p.sleep(ctx, p.Delay(attempt))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return &RetriesExhaustedError{Attempts: max, Last: last}
}
