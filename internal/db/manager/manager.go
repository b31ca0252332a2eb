package manager

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vvka-141/shopload/internal/db"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// DataSource supplies the parsed input files.
type DataSource interface {
	Load(dataDir string) (*shopload.DataSet, error)
}

// Manager implements shopload.DataManager on top of a Connector.
type Manager struct {
	connector shopload.Connector
	source    DataSource
	logger    shopload.Logger
	out       io.Writer
	cfg       shopload.RunConfig
}

// New creates a Manager. out receives the VerifyData report; nil discards it.
func New(connector shopload.Connector, source DataSource, logger shopload.Logger, out io.Writer, cfg shopload.RunConfig) *Manager {
	if out == nil {
		out = io.Discard
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = shopload.DefaultSampleSize
	}
	return &Manager{
		connector: connector,
		source:    source,
		logger:    logger,
		out:       out,
		cfg:       cfg,
	}
}

// TestConnection opens a connection and runs SELECT 1.
func (m *Manager) TestConnection(ctx context.Context) error {
	err := db.WithConnection(ctx, m.connector, func(ctx context.Context, conn shopload.DBConnection) error {
		var one int
		if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("%w: SELECT 1: %w", shopload.ErrExecutionFailed, err)
		}
		return nil
	})
	if err != nil {
		return m.fail("Error testing database connection", err)
	}

	m.logger.Info("Database connection test successful!")
	return nil
}

// CreateTables drops orders, products and customers when present, then
// creates them again in one transaction. A failed drop is logged and skipped;
// a failed create aborts the call.
func (m *Manager) CreateTables(ctx context.Context) error {
	err := db.WithConnection(ctx, m.connector, func(ctx context.Context, conn shopload.DBConnection) error {
		stmts, err := statementsFor(conn.Dialect())
		if err != nil {
			return err
		}

		for _, table := range dropOrder {
			if err := conn.Exec(ctx, dropTableSQL(table)); err != nil {
				m.logger.Warn("Warning dropping table %s: %v", table, err)
			}
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: begin transaction: %w", shopload.ErrExecutionFailed, err)
		}
		defer tx.Rollback(ctx)

		for _, ddl := range stmts.create {
			m.logger.Verbose("Creating table %s", ddl.table)
			if err := tx.Exec(ctx, ddl.sql); err != nil {
				return fmt.Errorf("%w: create table %s: %w", shopload.ErrExecutionFailed, ddl.table, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: commit: %w", shopload.ErrExecutionFailed, err)
		}
		return nil
	})
	if err != nil {
		return m.fail("Error creating tables", err)
	}

	m.logger.Info("Database tables created successfully!")
	return nil
}

// ImportCSVData loads the input files and upserts customers, products and
// orders, in that order, inside one transaction. Nothing is committed unless
// every row succeeds.
func (m *Manager) ImportCSVData(ctx context.Context) error {
	data, err := m.source.Load(m.cfg.DataDir)
	if err != nil {
		return m.fail("Error importing CSV data", err)
	}

	err = db.WithConnection(ctx, m.connector, func(ctx context.Context, conn shopload.DBConnection) error {
		stmts, err := statementsFor(conn.Dialect())
		if err != nil {
			return err
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("%w: begin transaction: %w", shopload.ErrExecutionFailed, err)
		}
		defer tx.Rollback(ctx)

		for _, c := range data.Customers {
			if err := tx.Exec(ctx, stmts.upsertCustomer, c.CustomerID, c.Name, c.Email); err != nil {
				return fmt.Errorf("%w: upsert customer %d: %w", shopload.ErrExecutionFailed, c.CustomerID, err)
			}
		}

		for _, p := range data.Products {
			if err := tx.Exec(ctx, stmts.upsertProduct, p.ProductID, p.ProductName, p.Price.String()); err != nil {
				return fmt.Errorf("%w: upsert product %d: %w", shopload.ErrExecutionFailed, p.ProductID, err)
			}
		}

		for _, o := range data.Orders {
			if err := tx.Exec(ctx, stmts.upsertOrder, o.OrderID, o.DateTime.UTC(), o.CustomerID, o.ProductID); err != nil {
				return fmt.Errorf("%w: upsert order %d: %w", shopload.ErrExecutionFailed, o.OrderID, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: commit: %w", shopload.ErrExecutionFailed, err)
		}

		m.logger.Verbose("Upserted %d customer(s), %d product(s), %d order(s)",
			len(data.Customers), len(data.Products), len(data.Orders))
		return nil
	})
	if err != nil {
		return m.fail("Error importing CSV data", err)
	}

	m.logger.Info("CSV data imported successfully!")
	return nil
}

// VerifyData writes up to SampleSize rows of each table to the output writer.
// A notice is printed instead when no connection can be obtained, whatever
// the reason.
func (m *Manager) VerifyData(ctx context.Context) error {
	lease, err := db.Acquire(ctx, m.connector)
	if err != nil {
		fmt.Fprintln(m.out, "Failed to connect to database for verification.")
		return m.fail("Error verifying data", err)
	}
	defer lease.Release()

	sample, err := readSample(ctx, lease.Conn(), m.cfg.SampleSize)
	if err != nil {
		return m.fail("Error verifying data", err)
	}

	writeSample(m.out, sample)
	return nil
}

// Sample reads up to limit rows of each table, ordered by primary key.
func (m *Manager) Sample(ctx context.Context, limit int) (*shopload.DataSet, error) {
	var sample *shopload.DataSet
	err := db.WithConnection(ctx, m.connector, func(ctx context.Context, conn shopload.DBConnection) error {
		var err error
		sample, err = readSample(ctx, conn, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sample, nil
}

func readSample(ctx context.Context, conn shopload.DBConnection, limit int) (*shopload.DataSet, error) {
	sample := &shopload.DataSet{}

	customers, err := conn.Query(ctx, sampleSQL(customersTable, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: read customers: %w", shopload.ErrExecutionFailed, err)
	}
	if sample.Customers, err = decodeCustomers(customers); err != nil {
		return nil, err
	}

	products, err := conn.Query(ctx, sampleSQL(productsTable, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: read products: %w", shopload.ErrExecutionFailed, err)
	}
	if sample.Products, err = decodeProducts(products); err != nil {
		return nil, err
	}

	orders, err := conn.Query(ctx, sampleSQL(ordersTable, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: read orders: %w", shopload.ErrExecutionFailed, err)
	}
	if sample.Orders, err = decodeOrders(orders); err != nil {
		return nil, err
	}
	return sample, nil
}

// fail logs err under prefix and returns it unchanged.
func (m *Manager) fail(prefix string, err error) error {
	if errors.Is(err, shopload.ErrConnectionUnavailable) {
		m.logger.Error("Failed to establish database connection")
	} else {
		m.logger.Error("%s: %v", prefix, err)
	}
	return err
}

// Verify Manager implements the DataManager interface at compile time
var _ shopload.DataManager = (*Manager)(nil)
