package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vvka-141/shopload/pkg/shopload"
)

// recordingLogger captures formatted log lines per level.
type recordingLogger struct {
	mu    sync.Mutex
	lines map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{lines: make(map[string][]string)}
}

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {
	l.add("verbose", format, args...)
}
func (l *recordingLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *recordingLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *recordingLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

func (l *recordingLogger) get(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines[level]...)
}

// recordingWait records requested delays without sleeping.
type recordingWait struct {
	delays []time.Duration
}

func (w *recordingWait) wait(ctx context.Context, d time.Duration) error {
	w.delays = append(w.delays, d)
	return ctx.Err()
}

// fakeConn is a DBConnection that only tracks Close calls.
type fakeConn struct {
	mu     sync.Mutex
	closes int
}

func (c *fakeConn) Dialect() shopload.Dialect                             { return shopload.DialectSQLite }
func (c *fakeConn) Exec(context.Context, string, ...any) error            { return nil }
func (c *fakeConn) QueryRow(context.Context, string, ...any) shopload.Row { return nil }
func (c *fakeConn) Query(context.Context, string, ...any) (*shopload.ResultSet, error) {
	return &shopload.ResultSet{}, nil
}
func (c *fakeConn) Begin(context.Context) (shopload.Tx, error) {
	return nil, fmt.Errorf("not supported")
}

func (c *fakeConn) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// fakeConnector returns conn or err from Connect.
type fakeConnector struct {
	conn  shopload.DBConnection
	err   error
	calls int
}

func (f *fakeConnector) Connect(context.Context) (shopload.DBConnection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}
