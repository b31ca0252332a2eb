package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/shopload/internal/retry"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// newRetryExecutor builds the connection retry loop: retryCfg.Attempts total
// attempts, the k-th wait lasting BaseDelay^k seconds, capped at MaxDelay when set.
func newRetryExecutor(retryCfg shopload.RetryConfig, logger shopload.Logger) *retry.Executor {
	strategy := retry.NewPowerBackoff(retryCfg.Attempts, retryCfg.BaseDelay,
		retry.WithMaxDelay(retryCfg.MaxDelay),
	)

	return retry.NewExecutor(retry.NewSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt, maxAttempts int, err error, delay time.Duration) {
			logger.Warn("Connection failed: %v. Retrying (%d/%d) in %v...", err, attempt, maxAttempts-1, delay)
		})
}

// finishConnect turns the outcome of a retry loop into the connector result.
// Exhausted attempts become shopload.ErrConnectionUnavailable.
func finishConnect(conn shopload.DBConnection, err error, logger shopload.Logger) (shopload.DBConnection, error) {
	if err == nil {
		return conn, nil
	}

	if errors.Is(err, retry.ErrAttemptsExhausted) {
		logger.Error("Failed to connect, exiting without a connection: %v", err)
		return nil, fmt.Errorf("%w: %w", shopload.ErrConnectionUnavailable, err)
	}

	logger.Error("Failed to connect: %v", err)
	return nil, err
}

// StandardConnector implements the Connector interface for username/password
// authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *shopload.ConnectionConfig
	retryExecutor *retry.Executor
	dial          dialFunc
	logger        shopload.Logger
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *shopload.ConnectionConfig, retryCfg shopload.RetryConfig, logger shopload.Logger) (*StandardConnector, error) {
	dial, err := newDialer(config.Dialect, logger)
	if err != nil {
		return nil, err
	}

	return &StandardConnector{
		config:        config,
		retryExecutor: newRetryExecutor(retryCfg, logger),
		dial:          dial,
		logger:        logger,
	}, nil
}

// Connect opens one database session, retrying transient failures.
func (c *StandardConnector) Connect(ctx context.Context) (shopload.DBConnection, error) {
	var conn shopload.DBConnection

	c.logger.Verbose("Connecting to %s", RedactedDSN(c.config))

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		conn, err = c.dial(ctx, c.config)
		return err
	})

	return finishConnect(conn, err, c.logger)
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod.
func NewConnector(config *shopload.ConnectionConfig, retryCfg shopload.RetryConfig, logger shopload.Logger) (shopload.Connector, error) {
	switch config.AuthMethod {
	case shopload.AuthMethodStandard:
		return NewStandardConnector(config, retryCfg, logger)
	case shopload.AuthMethodAWSIAM:
		return newAWSConnector(config, retryCfg, logger)
	case shopload.AuthMethodGoogleIAM:
		return newGoogleConnector(config, retryCfg, logger)
	case shopload.AuthMethodAzureEntraID:
		return newAzureConnector(config, retryCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, shopload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw driver connection errors with actionable guidance.
func wrapConnectionError(err error, config *shopload.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())
	addr := config.Address()

	switch {
	case config.Dialect == shopload.DialectSQLite:
		return fmt.Errorf("failed to open sqlite database %q: %w", config.Database, err)

	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - %s is not running on %s
  - Wrong host or port (check DB_HOST and DB_PORT)
  - Firewall blocking the connection

Original error: %w`, addr, serverName(config.Dialect), addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

Original error: %w`, config.Host, err)

	case strings.Contains(errStr, "password authentication failed") || strings.Contains(errStr, "access denied"):
		return fmt.Errorf(`authentication failed for user "%s" on database "%s"

Possible causes:
  - Wrong password (check DB_PASSWORD)
  - Wrong username (check DB_USER)
  - User does not have access to the database

Original error: %w`, config.Username, config.Database, err)

	case strings.Contains(errStr, "does not exist") || strings.Contains(errStr, "unknown database"):
		return fmt.Errorf(`database "%s" does not exist

Create it first, for example:
  %s

Original error: %w`, config.Database, createDatabaseHint(config), err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires TLS but sslmode is disabled
  - Certificate verification failed (try sslmode=require)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to %s

The server connection limit has been reached; retry later or close idle sessions.

Original error: %w`, addr, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

func serverName(d shopload.Dialect) string {
	if d == shopload.DialectPostgres {
		return "PostgreSQL"
	}
	return "MySQL"
}

func createDatabaseHint(config *shopload.ConnectionConfig) string {
	if config.Dialect == shopload.DialectPostgres {
		return "createdb " + config.Database
	}
	return fmt.Sprintf("mysql -u %s -p -e 'CREATE DATABASE %s'", config.Username, config.Database)
}
