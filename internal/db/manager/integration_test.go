package manager

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/shopload/internal/db"
	"github.com/vvka-141/shopload/internal/files/filesystem"
	"github.com/vvka-141/shopload/internal/files/loader"
	"github.com/vvka-141/shopload/internal/logging"
	"github.com/vvka-141/shopload/internal/testinfra"
	"github.com/vvka-141/shopload/pkg/shopload"
)

func newServerFixture(t *testing.T, connString string) *fixture {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	require.NoError(t, err)
	config.RaiseOnWarnings = true

	logger := newRecordingLogger()
	connector, err := db.NewStandardConnector(config, shopload.RetryConfig{Attempts: 3, BaseDelay: 0}, logger)
	require.NoError(t, err)

	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile(shopload.CustomersFile, customersCSV)
	mfs.AddFile(shopload.ProductsFile, productsCSV)
	mfs.AddFile(shopload.OrdersFile, ordersCSV)

	out := &bytes.Buffer{}
	mgr := New(connector, loader.New(mfs, logging.NewNullLogger()), logger, out, shopload.RunConfig{DataDir: "/data"})
	return &fixture{mgr: mgr, fs: mfs, logger: logger, out: out}
}

func runServerSuite(t *testing.T, connString string) {
	ctx := context.Background()

	t.Run("create tables twice leaves empty tables", func(t *testing.T) {
		f := newServerFixture(t, connString)
		require.NoError(t, f.mgr.CreateTables(ctx))
		require.NoError(t, f.mgr.ImportCSVData(ctx))
		require.NoError(t, f.mgr.CreateTables(ctx))

		s := f.sample(t)
		assert.Empty(t, s.Customers)
		assert.Empty(t, s.Products)
		assert.Empty(t, s.Orders)
	})

	t.Run("import is idempotent and last write wins", func(t *testing.T) {
		f := newServerFixture(t, connString)
		require.NoError(t, f.mgr.CreateTables(ctx))
		require.NoError(t, f.mgr.ImportCSVData(ctx))
		require.NoError(t, f.mgr.ImportCSVData(ctx))

		s := f.sample(t)
		assert.Len(t, s.Customers, 2)
		assert.Len(t, s.Orders, 2)

		f.fs.AddFile(shopload.ProductsFile, "product_id,product_name,price\n10,Widget,12.34567\n")
		require.NoError(t, f.mgr.ImportCSVData(ctx))

		s = f.sample(t)
		require.Len(t, s.Products, 2)
		assert.Equal(t, "12.34567", s.Products[0].Price.StringFixed(5))
	})

	t.Run("foreign key violation commits nothing", func(t *testing.T) {
		f := newServerFixture(t, connString)
		require.NoError(t, f.mgr.CreateTables(ctx))
		f.fs.AddFile(shopload.OrdersFile, "order_id,date_time,customer_id,product_id\n100,2024-01-15 10:30:00,42,10\n")

		err := f.mgr.ImportCSVData(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, shopload.ErrExecutionFailed)

		s := f.sample(t)
		assert.Empty(t, s.Customers)
	})

	t.Run("verify prints sample", func(t *testing.T) {
		f := newServerFixture(t, connString)
		require.NoError(t, f.mgr.CreateTables(ctx))
		require.NoError(t, f.mgr.ImportCSVData(ctx))
		require.NoError(t, f.mgr.VerifyData(ctx))

		out := f.out.String()
		assert.Contains(t, out, "(1, 'Alice', 'alice@example.com')")
		assert.Contains(t, out, "(11, 'Gadget', 120.50000)")
		assert.Contains(t, out, "(101, 2024-01-16 08:00:00, 2, 11)")
		assert.Equal(t, 1, strings.Count(out, "\nOrders:\n"))
	})
}

func TestManager_PostgresIntegration(t *testing.T) {
	runServerSuite(t, testinfra.RequirePostgres(t))
}

func TestManager_MySQLIntegration(t *testing.T) {
	runServerSuite(t, testinfra.RequireMySQL(t))
}
