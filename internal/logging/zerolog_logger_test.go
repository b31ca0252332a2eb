package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf})
	require.NoError(t, err)

	logger.Verbose("hidden %d", 1)
	logger.Info("Database tables created successfully!")
	logger.Warn("Warning dropping table %s: %v", "orders", "locked")
	logger.Error("Error importing CSV data: %s", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF Database tables created successfully!")
	assert.Contains(t, out, "WRN Warning dropping table orders: locked")
	assert.Contains(t, out, "ERR Error importing CSV data: boom")
	assert.Contains(t, out, "run_id="+logger.RunID())
	assert.NotContains(t, out, "\x1b[", "non-terminal output must not be colored")
}

func TestZerologLogger_VerboseEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, Verbose: true})
	require.NoError(t, err)

	logger.Verbose("Connecting to %s", "sqlite:shop.db")

	assert.Contains(t, buf.String(), "DBG Connecting to sqlite:shop.db")
}

func TestZerologLogger_WritesLogFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "shopload-errors.log")

	logger, err := New(Options{Console: &buf, LogFile: path})
	require.NoError(t, err)

	logger.Error("Failed to connect, exiting without a connection: %s", "refused")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Failed to connect, exiting without a connection: refused")
	assert.Contains(t, buf.String(), "Failed to connect, exiting without a connection: refused")
}

func TestZerologLogger_RunIDIsUnique(t *testing.T) {
	a, err := New(Options{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	b, err := New(Options{Console: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.NoError(t, a.Close())
}

func TestZerologLogger_ConcurrentSafety(t *testing.T) {
	var buf safeBuffer
	logger, err := New(Options{Console: &buf})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Info("goroutine %d message %d", id, j)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, strings.Count(buf.String(), "\n"))
}

func TestNullLogger_DiscardsAllMessages(t *testing.T) {
	logger := NewNullLogger()

	logger.Verbose("test %s", "verbose")
	logger.Info("test %s", "info")
	logger.Warn("test %s", "warn")
	logger.Error("test %s", "error")
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
