package retry

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff implements exponential backoff with optional jitter.
// The wait after failed attempt k (one-indexed) is initialDelay * multiplier^(k-1).
type ExponentialBackoff struct {
	// initialDelay is the wait after the first failed attempt
	initialDelay time.Duration
	// maxDelay caps a single wait (<= 0 = uncapped)
	maxDelay time.Duration
	// multiplier is the factor by which delay increases
	multiplier float64
	// maxAttempts is the total number of attempts, including the first
	maxAttempts int
	// jitter adds randomness to prevent thundering herd (0.0-1.0)
	// Jitter of 0.1 means +/- 10% randomness
	jitter float64
	// jitterFunc provides random values [0, 1) for jitter calculation
	jitterFunc func() float64
}

// BackoffOption is a functional option for configuring ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the wait after the first failed attempt.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.initialDelay = d
	}
}

// WithMaxDelay sets the maximum delay between attempts. Zero disables the cap.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.maxDelay = d
	}
}

// WithMultiplier sets the factor by which delay increases between attempts.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.multiplier = m
	}
}

// WithJitter sets the jitter factor (0.0-1.0) to add randomness to delays.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitter = j
	}
}

// WithJitterFunc sets a custom function for generating random jitter values.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitterFunc = f
	}
}

// NewExponentialBackoff creates a new exponential backoff strategy with sensible defaults.
// Additional configuration can be provided via functional options.
//
// Example:
//
//	backoff := retry.NewExponentialBackoff(3,
//	    retry.WithInitialDelay(200 * time.Millisecond),
//	    retry.WithMaxDelay(1 * time.Minute),
//	    retry.WithJitter(0.2),
//	)
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: 100 * time.Millisecond,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewPowerBackoff returns a deterministic strategy whose k-th wait is base^k
// seconds: base, base², base³ ... With base = 2s and 3 attempts the waits are
// 2s then 4s. The result is uncapped unless WithMaxDelay is passed.
func NewPowerBackoff(attempts int, base time.Duration, opts ...BackoffOption) *ExponentialBackoff {
	defaults := []BackoffOption{
		WithInitialDelay(base),
		WithMultiplier(base.Seconds()),
		WithMaxDelay(0),
		WithJitter(0),
	}
	return NewExponentialBackoff(attempts, append(defaults, opts...)...)
}

// NextDelay calculates the wait after the given failed attempt (one-indexed).
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt-1))

	if b.maxDelay > 0 && delay > float64(b.maxDelay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 {
		jitterFunc := b.jitterFunc
		if jitterFunc == nil {
			// Tests should explicitly set jitterFunc to a deterministic function.
			jitterFunc = rand.Float64
		}
		// Map [0,1) to [-1,1): jitter=0.1, random=0.7 => delay * 1.04
		randomOffset := (jitterFunc() - 0.5) * 2.0
		delay *= 1.0 + (b.jitter * randomOffset)
	}

	if math.IsNaN(delay) || delay < 0 {
		return 0
	}
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	// Round to the millisecond so float error does not leak into comparisons.
	return time.Duration(delay).Round(time.Millisecond)
}

// MaxAttempts returns the total number of attempts.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}

// InitialDelay returns the initial delay for tests and debugging.
func (b *ExponentialBackoff) InitialDelay() time.Duration {
	return b.initialDelay
}

// MaxDelay returns the maximum delay for tests and debugging.
func (b *ExponentialBackoff) MaxDelay() time.Duration {
	return b.maxDelay
}

// Multiplier returns the backoff multiplier for tests and debugging.
func (b *ExponentialBackoff) Multiplier() float64 {
	return b.multiplier
}

// Jitter returns the jitter factor for tests and debugging.
func (b *ExponentialBackoff) Jitter() float64 {
	return b.jitter
}
