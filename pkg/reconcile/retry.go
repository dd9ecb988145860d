package reconcile

import (
	"context"
	"time"

	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/logging"
)

// RetryPolicy bounds retries for a single outbound call. Counters are
// scoped to the individual call, never to process-wide state.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay seeds the exponential backoff.
	BaseDelay time.Duration

	// MaxDelay caps any single backoff wait.
	MaxDelay time.Duration
}

// DefaultRetryPolicy mirrors the platform defaults: three attempts,
// two second base, one minute ceiling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    time.Minute,
	}
}

// normalized fills in zero values so a partially configured policy
// still terminates.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = time.Minute
	}
	return p
}

// delay computes the wait before the given retry attempt, preferring a
// server-advertised Retry-After over exponential backoff.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	if after := errors.RetryAfter(err); after > 0 {
		if after > p.MaxDelay {
			return p.MaxDelay
		}
		return after
	}

	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// withRetry runs fn, retrying rate-limit and transient network errors
// with bounded exponential backoff. Any other error returns
// immediately. The backoff sleep is the only suspension point and is
// cut short by context cancellation. The logger travels on the
// context.
func withRetry(ctx context.Context, policy RetryPolicy, operation string, fn func(context.Context) error) error {
	policy = policy.normalized()
	logger := logging.Ctx(ctx)

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == policy.MaxAttempts-1 {
			break
		}

		wait := policy.delay(attempt, lastErr)
		logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Int("max_attempts", policy.MaxAttempts).
			Dur("backoff", wait).
			Err(lastErr).
			Msg("Retrying after recoverable error")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.ErrCanceled
		case <-timer.C:
		}
	}

	return lastErr
}
