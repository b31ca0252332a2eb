package shopload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := mgr.ImportCSVData(ctx)
//	if errors.Is(err, shopload.ErrConnectionUnavailable) {
//	    // retries were exhausted, nothing was written
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionUnavailable indicates every connection attempt failed with a
	// transient error. It is the "no connection" result of a Connector.
	ErrConnectionUnavailable = errors.New("database connection unavailable")

	// ErrExecutionFailed indicates a SQL statement failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrInvalidData indicates an input file is missing or malformed.
	ErrInvalidData = errors.New("invalid input data")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDialect indicates the requested SQL dialect is not supported.
	ErrUnsupportedDialect = errors.New("unsupported dialect")

	// ErrUsage indicates the command line was malformed.
	ErrUsage = errors.New("usage error")

	// ErrServerWarning is returned when the server reports a warning and
	// RaiseOnWarnings is enabled.
	ErrServerWarning = errors.New("server warning")
)

// usagePatterns are prefixes of the errors cobra returns for a malformed command line.
var usagePatterns = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"accepts ",
	"required flag",
	"invalid argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrUnsupportedDialect):
		return ExitConfigError
	case errors.Is(err, ErrConnectionUnavailable):
		return ExitConnectionError
	case errors.Is(err, ErrInvalidData):
		return ExitInvalidData
	case errors.Is(err, ErrExecutionFailed), errors.Is(err, ErrServerWarning):
		return ExitExecutionFailed
	}

	errStr := err.Error()
	for _, pattern := range usagePatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
