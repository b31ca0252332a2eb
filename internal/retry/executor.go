package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/shopload/pkg/shopload"
)

// ErrAttemptsExhausted wraps the last transient error once every attempt failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// RetryFunc is invoked before each wait. attempt is the one-indexed attempt
// that just failed, delay the wait that follows it.
type RetryFunc func(attempt, maxAttempts int, err error, delay time.Duration)

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// The With* methods return a NEW instance and leave the receiver unchanged.
type Executor struct {
	classifier shopload.ErrorClassifier
	strategy   shopload.BackoffStrategy
	onRetry    RetryFunc
	wait       WaitFunc
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier shopload.ErrorClassifier,
	strategy shopload.BackoffStrategy,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
		wait:       sleepContext,
	}
}

// WithOnRetry returns a new Executor with the specified retry callback.
//
// Example:
//
//	executor := retry.NewExecutor(classifier, strategy)
//	executor1 := executor.WithOnRetry(callback1) // New instance
//	executor2 := executor.WithOnRetry(callback2) // Another new instance
func (e *Executor) WithOnRetry(callback RetryFunc) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// WithWait returns a new Executor that waits between attempts with fn.
// Tests use it to record delays instead of sleeping.
func (e *Executor) WithWait(fn WaitFunc) *Executor {
	clone := *e
	if fn == nil {
		fn = sleepContext
	}
	clone.wait = fn
	return &clone
}

// Execute runs operation up to MaxAttempts times.
//
// It returns nil on the first success, the error itself when it is not
// transient, the context error when ctx ends during a wait, and an error
// wrapping both ErrAttemptsExhausted and the last failure when every attempt
// failed transiently.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxAttempts := e.strategy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}

		if !e.classifier.IsTransient(err) {
			return err
		}

		if attempt >= maxAttempts {
			return fmt.Errorf("%w after %d attempt(s): %w", ErrAttemptsExhausted, attempt, err)
		}

		delay := e.strategy.NextDelay(attempt)

		if e.onRetry != nil {
			e.onRetry(attempt, maxAttempts, err, delay)
		}

		if err := e.wait(ctx, delay); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
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
