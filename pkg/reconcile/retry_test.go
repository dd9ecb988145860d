package reconcile

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/draftsync/draftsync/pkg/errors"
	"github.com/draftsync/draftsync/pkg/logging"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func quietCtx() context.Context {
	return logging.WithLogger(context.Background(), logging.NewNopLogger())
}

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := withRetry(quietCtx(), fastPolicy(), "op", func(context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("withRetry = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := withRetry(quietCtx(), fastPolicy(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.NewTransientError("devto", stderrors.New("connection reset"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("withRetry = %v, want nil after recovery", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := withRetry(quietCtx(), fastPolicy(), "op", func(context.Context) error {
		calls++
		return errors.NewRateLimitError("devto", 0)
	})

	if !errors.IsRateLimited(err) {
		t.Fatalf("withRetry = %v, want the final rate limit error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want MaxAttempts", calls)
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", errors.NewAuthError("devto", "bad key", nil)},
		{"permission", errors.NewPermissionError("hashnode", "delete", "1")},
		{"not found", errors.NewNotFoundError("devto", "article", "1")},
		{"plain", stderrors.New("unexpected")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := withRetry(quietCtx(), fastPolicy(), "op", func(context.Context) error {
				calls++
				return tt.err
			})

			if !stderrors.Is(err, tt.err) {
				t.Fatalf("withRetry = %v, want %v", err, tt.err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1 (no retries)", calls)
			}
		})
	}
}

func TestWithRetryCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(quietCtx())

	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- withRetry(ctx, policy, "op", func(context.Context) error {
			calls++
			return errors.NewTransientError("devto", stderrors.New("flaky"))
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.IsCanceled(err) {
			t.Fatalf("withRetry = %v, want canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("withRetry did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (canceled during first backoff)", calls)
	}
}

func TestDelayPrefersRetryAfter(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: time.Minute}

	got := policy.delay(0, errors.NewRateLimitError("devto", 17*time.Second))
	if got != 17*time.Second {
		t.Errorf("delay = %v, want server-advertised 17s", got)
	}
}

func TestDelayRetryAfterCapped(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}

	got := policy.delay(0, errors.NewRateLimitError("devto", 5*time.Minute))
	if got != 30*time.Second {
		t.Errorf("delay = %v, want the MaxDelay cap", got)
	}
}

func TestDelayExponentialBackoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Minute}
	transient := errors.NewTransientError("devto", stderrors.New("x"))

	wants := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for attempt, want := range wants {
		if got := policy.delay(attempt, transient); got != want {
			t.Errorf("delay(attempt=%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestDelayBackoffCapped(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	transient := errors.NewTransientError("devto", stderrors.New("x"))

	if got := policy.delay(8, transient); got != 5*time.Second {
		t.Errorf("delay = %v, want the MaxDelay cap", got)
	}
}

func TestNormalizedFillsZeroValues(t *testing.T) {
	p := RetryPolicy{}.normalized()
	if p.MaxAttempts < 1 || p.BaseDelay <= 0 || p.MaxDelay <= 0 {
		t.Errorf("normalized left zero values: %+v", p)
	}
}
