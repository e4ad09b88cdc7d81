package retry_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/infra/retry"
)

func fakeClock(slept *[]time.Duration) retry.SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	var slept []time.Duration
	p := retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Sleep:       fakeClock(&slept),
	}

	// [429, 429, 200]: exactly two delayed retries then success.
	responses := []error{
		goerr.Wrap(types.ErrRateLimited, "throttled"),
		goerr.Wrap(types.ErrRateLimited, "throttled"),
		nil,
	}
	var calls int
	err := p.Do(context.Background(), func(ctx context.Context) error {
		defer func() { calls++ }()
		return responses[calls]
	})

	gt.NoError(t, err)
	gt.V(t, calls).Equal(3)
	gt.A(t, slept).Length(2)
	gt.V(t, slept[0]).Equal(100 * time.Millisecond)
	gt.V(t, slept[1]).Equal(200 * time.Millisecond)
}

func TestDoFailsFastOnNonRetryable(t *testing.T) {
	var slept []time.Duration
	p := retry.Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Second,
		Sleep:       fakeClock(&slept),
	}

	var calls int
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return goerr.Wrap(types.ErrNotFound, "no such branch")
	})

	gt.Error(t, err)
	gt.True(t, retry.IsRetryable(err) == false)
	gt.V(t, calls).Equal(1)
	gt.A(t, slept).Length(0)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	p := retry.Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Second,
		Sleep:       fakeClock(&slept),
	}

	var calls int
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return goerr.Wrap(types.ErrTransient, "connection reset")
	})

	gt.Error(t, err)
	gt.V(t, calls).Equal(3) // initial try + 2 retries
	gt.A(t, slept).Length(2)
}

type hintedErr struct {
	error
	after time.Duration
}

func (x hintedErr) RetryAfter() time.Duration { return x.after }
func (x hintedErr) Unwrap() error             { return x.error }

func TestDoHonorsRetryAfterHint(t *testing.T) {
	var slept []time.Duration
	p := retry.Policy{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    time.Second,
		Sleep:       fakeClock(&slept),
	}

	var calls int
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return hintedErr{error: types.ErrRateLimited, after: 7 * time.Second}
		}
		return nil
	})

	gt.A(t, slept).Length(1)
	gt.V(t, slept[0]).Equal(7 * time.Second)
}

func TestDelayCapsAtMax(t *testing.T) {
	p := retry.Policy{
		MaxAttempts: 10,
		BaseDelay:   time.Second,
		MaxDelay:    4 * time.Second,
	}
	gt.V(t, p.Delay(0)).Equal(time.Second)
	gt.V(t, p.Delay(1)).Equal(2 * time.Second)
	gt.V(t, p.Delay(5)).Equal(4 * time.Second)
}

func TestDoCanceledContext(t *testing.T) {
	p := retry.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Do(ctx, func(ctx context.Context) error {
		return goerr.Wrap(types.ErrTransient, "flaky")
	})
	gt.Error(t, err)
}
