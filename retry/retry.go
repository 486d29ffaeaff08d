// Package retry centralizes the retry policy applied to external calls.
// Components wrap transient failures with types.Transient; anything else
// aborts immediately.
package retry

import (
	"context"
	"time"

	"brainrotify/types"
)

// Policy bounds the attempts made against one external service call.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do runs fn until it succeeds, returns a non-transient error, exhausts
// MaxAttempts, or ctx is cancelled. Backoff grows linearly with the attempt
// number (attempt * BaseDelay).
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = fn()
		if err == nil {
			return nil
		}
		if !types.IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * p.BaseDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
