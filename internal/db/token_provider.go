package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
type TokenProvider interface {
	// GetToken acquires a token that is sent as the database password.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a description for logging. Must not include secrets.
	String() string
}

// AzureOSSRDBMSScope is the OAuth scope for Azure Database for MySQL and PostgreSQL.
const AzureOSSRDBMSScope = "https://ossrdbms-aad.database.windows.net/.default"
