package shopload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // All steps completed
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // No database connection could be obtained
	ExitExecutionFailed = 13 // A DDL or DML statement failed
	ExitInvalidData     = 14 // Input CSV files missing or malformed
)

const (
	// DefaultRetryAttempts is N, the total number of connection attempts.
	DefaultRetryAttempts = 3

	// DefaultRetryBaseDelay is D; retries wait D, D², D³ ... seconds.
	DefaultRetryBaseDelay = 2 * time.Second

	DefaultUser     = "root"
	DefaultHost     = "127.0.0.1"
	DefaultDatabase = "shop"
	DefaultDialect  = DialectMySQL

	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432

	// DefaultDataDir is resolved relative to the working directory.
	DefaultDataDir = "data"

	// DefaultSampleSize is the number of rows printed per table by VerifyData.
	DefaultSampleSize = 5

	// DefaultLogFile receives a copy of every log line.
	DefaultLogFile = "shopload-errors.log"

	// AppName is reported to the server where the driver supports it.
	AppName = "shopload"
)

// Input file names inside the data directory.
const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
	OrdersFile    = "orders.csv"
)
