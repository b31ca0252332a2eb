package shopload

import "time"

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait after the given failed attempt.
	// attempt is one-indexed: NextDelay(1) is the wait between attempts 1 and 2.
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the total number of attempts, including the first.
	MaxAttempts() int
}
