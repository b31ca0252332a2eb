// Package retry provides automatic retry logic with exponential backoff
// for transient database connection failures.
//
// The package supports pluggable error classification and backoff strategies.
//
// # Example Usage
//
//	classifier := retry.NewSQLErrorClassifier()
//	strategy := retry.NewPowerBackoff(3, 2*time.Second) // waits 2s, then 4s
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return connectToDatabase(ctx)
//	})
//	if errors.Is(err, retry.ErrAttemptsExhausted) {
//	    // every attempt failed with a transient error
//	}
//
// # Error Classification
//
// The ErrorClassifier interface determines which errors are transient (retryable)
// versus fatal (non-retryable). SQLErrorClassifier recognizes transient
// PostgreSQL, MySQL and SQLite conditions as well as network failures.
// Fatal errors are returned immediately without another attempt.
//
// # Backoff Strategies
//
// MaxAttempts counts every attempt, the first included. NextDelay(k) is the
// wait after failed attempt k, so N attempts sleep N-1 times.
package retry
