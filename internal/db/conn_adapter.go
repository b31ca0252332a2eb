package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// pgxConnAdapter adapts a single *pgx.Conn to shopload.DBConnection.
//
// Thread-Safety: NOT safe for concurrent use (pgx.Conn is not).
type pgxConnAdapter struct {
	conn    *pgx.Conn
	notices *noticeCollector
	onClose func()

	closeOnce sync.Once
	closeErr  error
}

func (c *pgxConnAdapter) Dialect() shopload.Dialect { return shopload.DialectPostgres }

func (c *pgxConnAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	c.notices.reset()
	if _, err := c.conn.Exec(ctx, sql, args...); err != nil {
		return err
	}
	return c.notices.err()
}

func (c *pgxConnAdapter) QueryRow(ctx context.Context, sql string, args ...any) shopload.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c *pgxConnAdapter) Query(ctx context.Context, sql string, args ...any) (*shopload.ResultSet, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &shopload.ResultSet{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *pgxConnAdapter) Begin(ctx context.Context) (shopload.Tx, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTxAdapter{tx: tx, notices: c.notices}, nil
}

func (c *pgxConnAdapter) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close(ctx)
		if c.onClose != nil {
			c.onClose()
		}
	})
	return c.closeErr
}

type pgxTxAdapter struct {
	tx      pgx.Tx
	notices *noticeCollector
}

func (t *pgxTxAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	t.notices.reset()
	if _, err := t.tx.Exec(ctx, sql, args...); err != nil {
		return err
	}
	return t.notices.err()
}

func (t *pgxTxAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTxAdapter) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// noticeCollector receives server notices for one connection. WARNING
// notices fail the current statement when raise is set; everything else
// is logged.
type noticeCollector struct {
	raise  bool
	logger shopload.Logger

	mu       sync.Mutex
	warnings []string
}

func (n *noticeCollector) handle(_ *pgconn.PgConn, notice *pgconn.Notice) {
	if n.raise && strings.EqualFold(notice.Severity, "WARNING") {
		n.mu.Lock()
		n.warnings = append(n.warnings, notice.Message)
		n.mu.Unlock()
		return
	}
	if n.logger != nil {
		n.logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

func (n *noticeCollector) reset() {
	n.mu.Lock()
	n.warnings = nil
	n.mu.Unlock()
}

func (n *noticeCollector) err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.warnings) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", shopload.ErrServerWarning, strings.Join(n.warnings, "; "))
}

// sqlConnAdapter adapts one *sql.Conn (MySQL or SQLite) to shopload.DBConnection.
// The owning *sql.DB is limited to a single open connection and is closed with it.
type sqlConnAdapter struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect shopload.Dialect

	closeOnce sync.Once
	closeErr  error
}

func (c *sqlConnAdapter) Dialect() shopload.Dialect { return c.dialect }

func (c *sqlConnAdapter) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.conn.ExecContext(ctx, query, args...)
	return err
}

func (c *sqlConnAdapter) QueryRow(ctx context.Context, query string, args ...any) shopload.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

func (c *sqlConnAdapter) Query(ctx context.Context, query string, args ...any) (*shopload.ResultSet, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &shopload.ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *sqlConnAdapter) Begin(ctx context.Context) (shopload.Tx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTxAdapter{tx: tx}, nil
}

func (c *sqlConnAdapter) Close(_ context.Context) error {
	c.closeOnce.Do(func() {
		c.closeErr = errors.Join(c.conn.Close(), c.db.Close())
	})
	return c.closeErr
}

type sqlTxAdapter struct {
	tx *sql.Tx
}

func (t *sqlTxAdapter) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTxAdapter) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTxAdapter) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// normalizeValue converts driver-specific values to plain Go values.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case driver.Valuer:
		out, err := val.Value()
		if err != nil {
			return v
		}
		if b, ok := out.([]byte); ok {
			return string(b)
		}
		return out
	default:
		return v
	}
}

var (
	_ shopload.DBConnection = (*pgxConnAdapter)(nil)
	_ shopload.DBConnection = (*sqlConnAdapter)(nil)
)
