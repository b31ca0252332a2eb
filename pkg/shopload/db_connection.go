package shopload

import "context"

// DBConnection abstracts a single, unpooled database session.
// It hides driver types (pgx, database/sql) from the data manager.
//
// Thread-Safety: NOT safe for concurrent use. One operation owns one connection.
type DBConnection interface {
	// Dialect reports the SQL flavor spoken by this connection.
	Dialect() Dialect

	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Query executes a query and materializes every returned row.
	Query(ctx context.Context, sql string, args ...any) (*ResultSet, error)

	// Begin starts a transaction on this connection.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the underlying session. Safe to call more than once.
	Close(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}

// Tx is a transaction started with DBConnection.Begin.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error

	// Commit makes every statement of the transaction durable.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. It is a no-op after Commit.
	Rollback(ctx context.Context) error
}

// ResultSet is a fully read query result. Values are normalized to Go
// primitives where the driver allows it ([]byte becomes string).
type ResultSet struct {
	Columns []string
	Rows    [][]any
}
