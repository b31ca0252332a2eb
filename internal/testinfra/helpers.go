package testinfra

import (
	"context"
	"os"
	"sync"
	"testing"
)

// lazyServer starts one container per test binary on first use.
type lazyServer struct {
	once    sync.Once
	conn    string
	err     error
	envVar  string
	startFn func(ctx context.Context) (*Container, error)
}

func (s *lazyServer) connString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(s.envVar); connString != "" {
		return connString
	}

	s.once.Do(func() {
		ctr, err := s.startFn(context.Background())
		if err != nil {
			s.err = err
			return
		}
		s.conn = ctr.ConnString
	})
	if s.err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", s.envVar, s.err)
	}
	return s.conn
}

var (
	postgresServer = &lazyServer{envVar: "SHOPLOAD_TEST_POSTGRES", startFn: StartPostgres}
	mysqlServer    = &lazyServer{envVar: "SHOPLOAD_TEST_MYSQL", startFn: StartMySQL}
)

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequirePostgres returns a connection string for a PostgreSQL test server.
// Priority: SHOPLOAD_TEST_POSTGRES env var > auto-started testcontainer > skip test.
func RequirePostgres(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return postgresServer.connString(t)
}

// RequireMySQL returns a connection string for a MySQL test server.
// Priority: SHOPLOAD_TEST_MYSQL env var > auto-started testcontainer > skip test.
func RequireMySQL(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return mysqlServer.connString(t)
}
