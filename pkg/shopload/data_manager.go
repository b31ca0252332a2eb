package shopload

import "context"

// DataManager loads the CSV data set into the database.
// Every method opens and releases its own connection.
//
// Implementations are NOT safe for concurrent use.
type DataManager interface {
	// TestConnection runs a liveness query.
	TestConnection(ctx context.Context) error

	// CreateTables drops and recreates customers, products and orders.
	CreateTables(ctx context.Context) error

	// ImportCSVData upserts the three CSV files in a single transaction.
	ImportCSVData(ctx context.Context) error

	// VerifyData prints a sample of every table.
	VerifyData(ctx context.Context) error
}
