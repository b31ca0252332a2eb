package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/shopload/pkg/shopload"
)

// Lease owns one connection obtained from a Connector until Release is called.
type Lease struct {
	conn shopload.DBConnection

	once       sync.Once
	releaseErr error
}

// Acquire connects and wraps the connection in a Lease. When the connector
// fails, no Lease is returned and there is nothing to release.
func Acquire(ctx context.Context, connector shopload.Connector) (*Lease, error) {
	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, shopload.ErrConnectionUnavailable
	}
	return &Lease{conn: conn}, nil
}

// Conn returns the leased connection.
func (l *Lease) Conn() shopload.DBConnection {
	return l.conn
}

// Release closes the connection. Only the first call closes; later calls
// return the first result. Release on a nil Lease is a no-op.
func (l *Lease) Release() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		// The caller's context may already be cancelled; closing must still happen.
		l.releaseErr = l.conn.Close(context.Background())
	})
	return l.releaseErr
}

// WithConnection runs fn with a fresh connection and releases it when fn
// returns or panics. fn is not called when no connection could be obtained.
func WithConnection(ctx context.Context, connector shopload.Connector, fn func(ctx context.Context, conn shopload.DBConnection) error) (err error) {
	lease, err := Acquire(ctx, connector)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := lease.Release(); releaseErr != nil && err == nil {
			err = fmt.Errorf("failed to release connection: %w", releaseErr)
		}
	}()

	return fn(ctx, lease.Conn())
}
