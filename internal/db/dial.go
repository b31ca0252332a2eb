package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/shopload/pkg/shopload"

	_ "modernc.org/sqlite"
)

// dialFunc opens one database session. It is invoked once per connection attempt.
type dialFunc func(ctx context.Context, config *shopload.ConnectionConfig) (shopload.DBConnection, error)

// newDialer returns the dial function for the configured dialect.
func newDialer(dialect shopload.Dialect, logger shopload.Logger) (dialFunc, error) {
	switch dialect {
	case shopload.DialectPostgres:
		return func(ctx context.Context, config *shopload.ConnectionConfig) (shopload.DBConnection, error) {
			conn, err := dialPostgres(ctx, config, logger, nil)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}, nil
	case shopload.DialectMySQL:
		return dialMySQL, nil
	case shopload.DialectSQLite:
		return dialSQLite, nil
	default:
		return nil, fmt.Errorf("%q: %w", dialect, shopload.ErrUnsupportedDialect)
	}
}

// dialPostgres opens a single pgx connection. customize may adjust the parsed
// config before dialing, e.g. to install a custom DialFunc.
func dialPostgres(ctx context.Context, config *shopload.ConnectionConfig, logger shopload.Logger, customize func(*pgx.ConnConfig)) (*pgxConnAdapter, error) {
	connConfig, err := pgx.ParseConfig(BuildPostgresConnString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	notices := &noticeCollector{raise: config.RaiseOnWarnings, logger: logger}
	connConfig.OnNotice = notices.handle

	if customize != nil {
		customize(connConfig)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return nil, wrapConnectionError(err, config)
	}

	return &pgxConnAdapter{conn: conn, notices: notices}, nil
}

func dialMySQL(ctx context.Context, config *shopload.ConnectionConfig) (shopload.DBConnection, error) {
	connector, err := mysql.NewConnector(BuildMySQLConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to build mysql connector: %w", err)
	}
	return openSingle(ctx, sql.OpenDB(connector), config)
}

func dialSQLite(ctx context.Context, config *shopload.ConnectionConfig) (shopload.DBConnection, error) {
	db, err := sql.Open("sqlite", BuildSQLiteDSN(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return openSingle(ctx, db, config)
}

// openSingle pins one session out of db and verifies it is alive.
func openSingle(ctx context.Context, db *sql.DB, config *shopload.ConnectionConfig) (shopload.DBConnection, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, wrapConnectionError(err, config)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, wrapConnectionError(err, config)
	}

	return &sqlConnAdapter{db: db, conn: conn, dialect: config.Dialect}, nil
}
