// Package retry implements the backoff policy applied to transient API
// failures. The policy is a plain value injected into the client so tests
// can drive it with a fake clock.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/types"
)

// SleepFunc waits for d or returns early with the context error.
type SleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DelayHint lets an error dictate its own retry delay. The API client
// implements this for 429 responses carrying a Retry-After header.
type DelayHint interface {
	RetryAfter() time.Duration
}

// Policy holds backoff parameters: delays grow as BaseDelay×2^attempt up to
// MaxDelay, spread by ±Jitter fraction.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64

	// Sleep and Rand are overridable for tests. Zero values use the wall
	// clock and math/rand.
	Sleep SleepFunc
	Rand  func() float64
}

// Default mirrors the retry settings the CLI ships with.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Jitter:      0.2,
	}
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Everything else fails immediately.
func IsRetryable(err error) bool {
	return errors.Is(err, types.ErrRateLimited) || errors.Is(err, types.ErrTransient)
}

// Delay computes the backoff before retry number attempt (0-origin).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		rnd := p.Rand
		if rnd == nil {
			rnd = rand.Float64
		}
		spread := 1 + p.Jitter*(2*rnd()-1)
		d = time.Duration(float64(d) * spread)
	}
	return d
}

// Do runs fn until it succeeds, fails with a non-retryable error, or
// exhausts MaxAttempts retries. Each retry waits per Delay, or per the
// error's own DelayHint when present.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = realSleep
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt >= p.MaxAttempts {
			return goerr.Wrap(lastErr, "retries exhausted", goerr.V("attempts", attempt+1))
		}

		delay := p.Delay(attempt)
		var hint DelayHint
		if errors.As(lastErr, &hint) {
			if d := hint.RetryAfter(); d > 0 {
				delay = d
			}
		}
		if err := sleep(ctx, delay); err != nil {
			return goerr.Wrap(err, "retry canceled")
		}
	}
}
