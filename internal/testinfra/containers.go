package testinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"

	MySQLImage    = "mysql:8.4"
	MySQLUser     = "shop"
	MySQLPassword = "shop"

	Database = "shop"

	containerCertDir  = "/tmp/testcontainers-go/postgres"
	sslEntrypointPath = "/usr/local/bin/docker-entrypoint-ssl.bash"
)

// Container is a running database server and the shopload connection
// string that reaches it.
type Container struct {
	testcontainers.Container
	ConnString string
}

func postgresWait() testcontainers.CustomizeRequestOption {
	return testcontainers.WithWaitStrategy(
		wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	)
}

// StartPostgres starts a plain PostgreSQL server.
func StartPostgres(ctx context.Context) (*Container, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(Database),
		postgresWait(),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &Container{Container: ctr, ConnString: connStr}, nil
}

// StartTLSPostgres starts a PostgreSQL server presenting the certificates in
// certPaths. The returned connection string requires TLS.
func StartTLSPostgres(ctx context.Context, certPaths *CertPaths) (*Container, error) {
	confPath, err := writeSSLConfig(filepath.Dir(certPaths.CACert))
	if err != nil {
		return nil, err
	}

	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(Database),
		postgres.WithSSLCert(certPaths.CACert, certPaths.ServerCert, certPaths.ServerKey),
		postgres.WithConfigFile(confPath),
		// WithSSLCert sets entrypoint to "sh" which fails on Debian (dash doesn't support pipefail).
		testcontainers.WithEntrypoint("bash", sslEntrypointPath),
		postgresWait(),
	)
	if err != nil {
		return nil, fmt.Errorf("start tls postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=require")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &Container{Container: ctr, ConnString: connStr}, nil
}

// StartMySQL starts a MySQL server with an empty shop database.
func StartMySQL(ctx context.Context) (*Container, error) {
	ctr, err := mysql.Run(ctx,
		MySQLImage,
		mysql.WithDatabase(Database),
		mysql.WithUsername(MySQLUser),
		mysql.WithPassword(MySQLPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("start mysql: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mysql host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mysql port: %w", err)
	}

	connStr := fmt.Sprintf("mysql://%s:%s@%s:%s/%s", MySQLUser, MySQLPassword, host, port.Port(), Database)
	return &Container{Container: ctr, ConnString: connStr}, nil
}

func writeSSLConfig(dir string) (string, error) {
	conf := fmt.Sprintf(`listen_addresses = '*'
ssl = on
ssl_cert_file = '%s/server.cert'
ssl_key_file = '%s/server.key'
ssl_ca_file = '%s/ca_cert.pem'
`, containerCertDir, containerCertDir, containerCertDir)

	path := filepath.Join(dir, "postgresql.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		return "", fmt.Errorf("write postgresql.conf: %w", err)
	}
	return path, nil
}
