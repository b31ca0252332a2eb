package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/shopload/internal/retry"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// GoogleCloudSQLConnector connects to Cloud SQL for PostgreSQL using IAM
// database authentication through the Cloud SQL Go Connector.
// The dialer lives as long as the returned connection and is closed with it.
type GoogleCloudSQLConnector struct {
	config        *shopload.ConnectionConfig
	instance      string
	retryExecutor *retry.Executor
	logger        shopload.Logger
	newDialer     func(ctx context.Context) (*cloudsqlconn.Dialer, error)
}

// NewGoogleCloudSQLConnector creates a connector for an instance connection
// name in the form project:region:instance.
func NewGoogleCloudSQLConnector(config *shopload.ConnectionConfig, instance string, retryCfg shopload.RetryConfig, logger shopload.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:        config,
		instance:      instance,
		retryExecutor: newRetryExecutor(retryCfg, logger),
		logger:        logger,
		newDialer: func(ctx context.Context) (*cloudsqlconn.Dialer, error) {
			return cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		},
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (shopload.DBConnection, error) {
	dialer, err := c.newDialer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	c.logger.Verbose("Connecting to Cloud SQL instance %s", c.instance)

	// Host and port are placeholders; the dialer routes to the instance.
	target := *c.config
	target.Password = ""
	target.SSLMode = "disable"

	var conn shopload.DBConnection
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		adapter, err := dialPostgres(ctx, &target, c.logger, func(cc *pgx.ConnConfig) {
			cc.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialer.Dial(ctx, c.instance)
			}
		})
		if err != nil {
			return err
		}
		adapter.onClose = func() { dialer.Close() }
		conn = adapter
		return nil
	})

	if err != nil {
		dialer.Close()
	}
	return finishConnect(conn, err, c.logger)
}

// newGoogleConnector validates Google-specific settings and builds the connector.
func newGoogleConnector(config *shopload.ConnectionConfig, retryCfg shopload.RetryConfig, logger shopload.Logger) (shopload.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", shopload.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username: %w", shopload.ErrInvalidConfig)
	}
	if config.Dialect != shopload.DialectPostgres {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth supports postgres only: %w", shopload.ErrUnsupportedAuthMethod)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, retryCfg, logger), nil
}
