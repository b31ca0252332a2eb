package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/shopload/internal/retry"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// A fresh token is acquired for every attempt and used as the password.
type TokenBasedConnector struct {
	config        *shopload.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	dial          dialFunc
	logger        shopload.Logger
	providerName  string
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in log messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *shopload.ConnectionConfig, retryCfg shopload.RetryConfig, tokenProvider TokenProvider, providerName string, logger shopload.Logger) (*TokenBasedConnector, error) {
	dial, err := newDialer(config.Dialect, logger)
	if err != nil {
		return nil, err
	}

	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(retryCfg, logger),
		dial:          dial,
		logger:        logger,
		providerName:  providerName,
	}, nil
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (shopload.DBConnection, error) {
	var conn shopload.DBConnection

	c.logger.Verbose("Connecting to %s using %s", RedactedDSN(c.config), c.tokenProvider)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		if time.Until(expiresOn) < 5*time.Minute {
			c.logger.Warn("%s token expires in %v", c.providerName, time.Until(expiresOn).Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		conn, err = c.dial(ctx, &configWithToken)
		return err
	})

	return finishConnect(conn, err, c.logger)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *shopload.ConnectionConfig, retryCfg shopload.RetryConfig, logger shopload.Logger) (shopload.Connector, error) {
	tokenProvider, err := NewAWSIAMTokenProvider(config.Address(), config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, retryCfg, tokenProvider, "AWS IAM", logger)
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// Explicit tenant, client and secret select Service Principal auth; otherwise the
// DefaultAzureCredential chain is used.
func newAzureConnector(config *shopload.ConnectionConfig, retryCfg shopload.RetryConfig, logger shopload.Logger) (shopload.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, retryCfg, tokenProvider, "Azure", logger)
}
