package shopload

import "context"

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, Cloud SQL dialers).
type Connector interface {
	// Connect returns a live connection, or an error. When every attempt failed
	// transiently the error satisfies errors.Is(err, ErrConnectionUnavailable);
	// any other error is a fatal condition that was not retried.
	// The caller must Close the returned connection.
	Connect(ctx context.Context) (DBConnection, error)
}
