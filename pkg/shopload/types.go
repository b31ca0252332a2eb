package shopload

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dialect selects the SQL flavor used for DDL, upserts and placeholders.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect maps user input (case-insensitive, common aliases accepted) to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return DialectMySQL, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedDialect)
	}
}

// DefaultPort returns the conventional server port for the dialect (0 for SQLite).
func (d Dialect) DefaultPort() int {
	switch d {
	case DialectMySQL:
		return DefaultMySQLPort
	case DialectPostgres:
		return DefaultPostgresPort
	default:
		return 0
	}
}

// ConnectionConfig represents resolved connection parameters.
type ConnectionConfig struct {
	Dialect  Dialect
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// SSLMode is passed through to PostgreSQL; for MySQL a non-empty value other
	// than "disable" enables TLS.
	SSLMode string

	// RaiseOnWarnings turns server warnings into statement failures.
	RaiseOnWarnings bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName        string
	ConnectTimeout time.Duration

	// AdditionalParams are appended to the driver DSN verbatim.
	AdditionalParams map[string]string

	// Cloud authentication parameters, used according to AuthMethod.
	AWSRegion         string
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	GoogleInstance    string
}

// Address returns host:port for network dialects.
func (c *ConnectionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration and returns every problem found, joined.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	switch c.Dialect {
	case DialectMySQL, DialectPostgres, DialectSQLite:
	default:
		errs = append(errs, fmt.Errorf("dialect %q: %w", c.Dialect, ErrInvalidConfig))
	}

	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}

	if c.Dialect != DialectSQLite {
		if c.Host == "" {
			errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
		}
		if c.Port <= 0 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
		}
		if c.Username == "" {
			errs = append(errs, fmt.Errorf("username is required: %w", ErrInvalidConfig))
		}
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrInvalidConfig))
	}

	if c.AuthMethod == AuthMethodGoogleIAM && c.Dialect != DialectPostgres {
		errs = append(errs, fmt.Errorf("Google Cloud SQL IAM auth is only supported for postgres: %w", ErrInvalidConfig))
	}

	if c.AuthMethod != AuthMethodStandard && c.Dialect == DialectSQLite {
		errs = append(errs, fmt.Errorf("sqlite does not support %v auth: %w", c.AuthMethod, ErrInvalidConfig))
	}

	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// RetryConfig controls the connection retry loop.
type RetryConfig struct {
	// Attempts is the total number of connection attempts (N).
	Attempts int

	// BaseDelay is D; the k-th retry waits D^k seconds.
	BaseDelay time.Duration

	// MaxDelay caps a single wait. Zero leaves D^k uncapped.
	MaxDelay time.Duration
}

// Validate checks the retry parameters.
func (c RetryConfig) Validate() error {
	var errs []error
	if c.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1, got %d: %w", c.Attempts, ErrInvalidConfig))
	}
	if c.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("retry delay cannot be negative: %w", ErrInvalidConfig))
	}
	if c.MaxDelay < 0 {
		errs = append(errs, fmt.Errorf("retry max delay cannot be negative: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// DefaultRetryConfig returns N=3, D=2s with no cap on a single wait.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:  DefaultRetryAttempts,
		BaseDelay: DefaultRetryBaseDelay,
	}
}

// RunConfig holds everything the data manager needs besides the connection.
type RunConfig struct {
	// DataDir contains customers.csv, products.csv and orders.csv.
	DataDir string

	// SampleSize is the number of rows VerifyData prints per table.
	SampleSize int

	Verbose bool
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS RDS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM (postgres)
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a flag value to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// Customer is one row of the customers table.
type Customer struct {
	CustomerID int64
	Name       string
	Email      string
}

// Product is one row of the products table.
type Product struct {
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
}

// Order is one row of the orders table. DateTime is always in UTC.
type Order struct {
	OrderID    int64
	DateTime   time.Time
	CustomerID int64
	ProductID  int64
}

// DataSet is the parsed content of the three input files, in import order.
type DataSet struct {
	Customers []Customer
	Products  []Product
	Orders    []Order

	// Dropped counts input rows discarded for missing fields, per file name.
	Dropped map[string]int
}
