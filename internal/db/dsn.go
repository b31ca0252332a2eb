package db

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// mysqlStrictMode is applied when RaiseOnWarnings is set so that data
// truncation and invalid values fail the statement instead of warning.
const mysqlStrictMode = "'STRICT_ALL_TABLES,NO_ENGINE_SUBSTITUTION'"

// BuildPostgresConnString converts a ConnectionConfig to a PostgreSQL URI for pgx.
func BuildPostgresConnString(config *shopload.ConnectionConfig) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	if config.SSLMode != "" {
		query.Set("sslmode", config.SSLMode)
	}
	if config.AppName != "" {
		query.Set("application_name", config.AppName)
	}
	if config.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	for key, value := range config.AdditionalParams {
		query.Set(key, value)
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// BuildMySQLConfig converts a ConnectionConfig to a go-sql-driver/mysql Config.
// Timestamps are read and written in UTC.
func BuildMySQLConfig(config *shopload.ConnectionConfig) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = config.Username
	mc.Passwd = config.Password
	mc.Net = "tcp"
	mc.Addr = config.Address()
	mc.DBName = config.Database
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = config.ConnectTimeout

	switch strings.ToLower(config.SSLMode) {
	case "", "disable", "false":
	case "require", "skip-verify":
		mc.TLSConfig = "skip-verify"
	case "prefer", "preferred":
		mc.TLSConfig = "preferred"
	default:
		mc.TLSConfig = "true"
	}

	// Cloud IAM tokens are sent as cleartext passwords and therefore need TLS.
	if config.AuthMethod != shopload.AuthMethodStandard {
		mc.AllowCleartextPasswords = true
		if mc.TLSConfig == "" {
			mc.TLSConfig = "true"
		}
	}

	params := make(map[string]string, len(config.AdditionalParams)+1)
	for key, value := range config.AdditionalParams {
		params[key] = value
	}
	if config.RaiseOnWarnings {
		if _, ok := params["sql_mode"]; !ok {
			params["sql_mode"] = mysqlStrictMode
		}
	}
	if len(params) > 0 {
		mc.Params = params
	}

	return mc
}

// BuildSQLiteDSN returns a modernc.org/sqlite DSN with foreign keys enforced.
func BuildSQLiteDSN(config *shopload.ConnectionConfig) string {
	query := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_time_format=sqlite",
	}

	keys := make([]string, 0, len(config.AdditionalParams))
	for key := range config.AdditionalParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query = append(query, url.QueryEscape(key)+"="+url.QueryEscape(config.AdditionalParams[key]))
	}

	return "file:" + config.Database + "?" + strings.Join(query, "&")
}

// RedactedDSN describes the connection target without secrets, for logs.
func RedactedDSN(config *shopload.ConnectionConfig) string {
	switch config.Dialect {
	case shopload.DialectSQLite:
		return fmt.Sprintf("sqlite:%s", config.Database)
	default:
		return fmt.Sprintf("%s://%s@%s/%s", config.Dialect, config.Username, config.Address(), config.Database)
	}
}
