// Package retry provides the bounded-retry executor used around every
// remote and external-service call. Retryability is decided by the error
// taxonomy in internal/services, not here.
package retry

import (
	"context"
	"time"

	"scribe/internal/services"
)

// Policy describes the retry budget and backoff shape for one call site.
// Distinct policies are expected for remote-store calls and external
// service calls.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// Exponential doubles the delay on each retry when set; otherwise the
	// delay stays at BaseDelay.
	Exponential bool
	// MaxDelay caps the backoff delay when > 0.
	MaxDelay time.Duration
	// OnRetry, when set, is invoked after each failed-but-retryable attempt
	// with the error and the 1-based attempt number, before the wait.
	OnRetry func(err error, attempt int)
	// Sleep overrides how waits are performed. Tests inject a recorder
	// here; production leaves it nil and gets a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait applied after the given 0-based retry index.
func (p Policy) Delay(retryIndex int) time.Duration {
	delay := p.BaseDelay
	if p.Exponential {
		for i := 0; i < retryIndex; i++ {
			delay *= 2
			if p.MaxDelay > 0 && delay >= p.MaxDelay {
				return p.MaxDelay
			}
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Do runs op up to policy.MaxRetries+1 times, strictly sequentially.
//
// A failure whose taxonomy marks it non-retryable propagates immediately,
// regardless of remaining budget. The final attempt's error propagates
// unchanged: retry never alters error identity. Callers that want per-site
// diagnostics attach them through policy.OnRetry.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !services.Retryable(err) {
			return zero, err
		}
		if i == attempts-1 {
			break
		}
		if policy.OnRetry != nil {
			policy.OnRetry(err, i+1)
		}
		if err := sleep(ctx, policy.Delay(i)); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// DoVoid is Do for operations without a result.
func DoVoid(ctx context.Context, policy Policy, op func(context.Context) error) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
