package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vvka-141/shopload/internal/config"
	"github.com/vvka-141/shopload/internal/db"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// Setting keys. Each one is also the name of its command-line flag.
const (
	keyConnection      = "connection"
	keyDialect         = "dialect"
	keyHost            = "host"
	keyPort            = "port"
	keyUser            = "user"
	keyPassword        = "password"
	keyDatabase        = "database"
	keySSLMode         = "sslmode"
	keyRaiseOnWarnings = "raise-on-warnings"
	keyAuthMethod      = "auth-method"
	keyAWSRegion       = "aws-region"
	keyAzureTenantID   = "azure-tenant-id"
	keyAzureClientID   = "azure-client-id"
	keyAzureSecret     = "azure-client-secret"
	keyGoogleInstance  = "google-instance"
	keyDataDir         = "data-dir"
	keySampleSize      = "sample-size"
	keyRetryAttempts   = "retry-attempts"
	keyRetryDelay      = "retry-delay"
	keyRetryMaxDelay   = "retry-max-delay"
	keyLogFile         = "log-file"
	keyVerbose         = "verbose"
)

// envBindings maps setting keys to environment variables, first match wins.
var envBindings = map[string][]string{
	keyConnection:      {"DATABASE_URL"},
	keyDialect:         {"DB_DIALECT"},
	keyHost:            {"DB_HOST"},
	keyPort:            {"DB_PORT"},
	keyUser:            {"DB_USER"},
	keyPassword:        {"DB_PASSWORD"},
	keyDatabase:        {"DB_NAME"},
	keySSLMode:         {"DB_SSLMODE"},
	keyRaiseOnWarnings: {"DB_RAISE_ON_WARNINGS"},
	keyAuthMethod:      {"DB_AUTH_METHOD"},
	keyAWSRegion:       {"AWS_REGION", "AWS_DEFAULT_REGION"},
	keyAzureTenantID:   {"AZURE_TENANT_ID"},
	keyAzureClientID:   {"AZURE_CLIENT_ID"},
	keyAzureSecret:     {"AZURE_CLIENT_SECRET"},
	keyGoogleInstance:  {"SHOPLOAD_GOOGLE_INSTANCE"},
	keyDataDir:         {"SHOPLOAD_DATA_DIR"},
	keySampleSize:      {"SHOPLOAD_SAMPLE_SIZE"},
	keyRetryAttempts:   {"SHOPLOAD_RETRY_ATTEMPTS"},
	keyRetryDelay:      {"SHOPLOAD_RETRY_DELAY"},
	keyRetryMaxDelay:   {"SHOPLOAD_RETRY_MAX_DELAY"},
	keyLogFile:         {"SHOPLOAD_LOG_FILE"},
	keyVerbose:         {"SHOPLOAD_VERBOSE"},
}

// connection fields that a flag may override on top of a connection string.
var connectionOverrides = []string{keyHost, keyPort, keyUser, keyDatabase, keySSLMode}

// settings is the fully resolved configuration of one invocation.
type settings struct {
	conn    *shopload.ConnectionConfig
	retry   shopload.RetryConfig
	run     shopload.RunConfig
	logFile string
}

// addSettingsFlags registers every setting flag on cmd.
func addSettingsFlags(flags *pflag.FlagSet) {
	flags.String(keyConnection, "",
		"Connection string (URI or ADO.NET format), e.g. mysql://root@127.0.0.1:3306/shop.\n"+
			"Alternative: DATABASE_URL environment variable")
	flags.String(keyDialect, "", "SQL dialect: mysql|postgres|sqlite (default mysql, or $DB_DIALECT)")
	flags.StringP(keyHost, "H", "", "Database server host (default 127.0.0.1, or $DB_HOST)")
	flags.IntP(keyPort, "P", 0, "Database server port (default 3306 for mysql, 5432 for postgres, or $DB_PORT)")
	flags.StringP(keyUser, "u", "", "Database user (default root, or $DB_USER)")
	flags.StringP(keyDatabase, "d", "", "Database name, or file path for sqlite (default shop, or $DB_NAME)")
	flags.String(keySSLMode, "", "SSL mode: disable|prefer|require|verify-ca|verify-full")
	flags.Bool(keyRaiseOnWarnings, true, "Treat server warnings as statement failures")
	flags.String(keyAuthMethod, "", "Authentication: standard|aws|azure|google")
	flags.String(keyAWSRegion, "", "AWS region for RDS IAM authentication")
	flags.String(keyAzureTenantID, "", "Azure AD tenant ID for service principal authentication")
	flags.String(keyAzureClientID, "", "Azure AD client ID for service principal authentication")
	flags.String(keyGoogleInstance, "", "Cloud SQL instance connection name (project:region:instance)")
	flags.String(keyDataDir, "", "Directory containing customers.csv, products.csv and orders.csv (default data)")
	flags.Int(keySampleSize, 0, "Rows printed per table by verification (default 5)")
	flags.Int(keyRetryAttempts, 0, "Total connection attempts (default 3)")
	flags.String(keyRetryDelay, "", "Retry base delay D such as 2s or 2; retry k waits D^k seconds (default 2s)")
	flags.String(keyRetryMaxDelay, "", "Upper bound for a single retry wait, such as 5m (default: uncapped)")
	flags.String(keyLogFile, "", "Log file receiving a copy of every log line (default shopload-errors.log)")
}

// newViper builds the layered view: flags over environment over
// shopload.yaml over built-in defaults.
func newViper(flags *pflag.FlagSet, projectCfg *config.ProjectConfig) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(keyDialect, string(shopload.DefaultDialect))
	v.SetDefault(keyHost, shopload.DefaultHost)
	v.SetDefault(keyUser, shopload.DefaultUser)
	v.SetDefault(keyDatabase, shopload.DefaultDatabase)
	v.SetDefault(keyRaiseOnWarnings, true)
	v.SetDefault(keyDataDir, shopload.DefaultDataDir)
	v.SetDefault(keySampleSize, shopload.DefaultSampleSize)
	v.SetDefault(keyRetryAttempts, shopload.DefaultRetryAttempts)
	v.SetDefault(keyRetryDelay, shopload.DefaultRetryBaseDelay)
	v.SetDefault(keyRetryMaxDelay, time.Duration(0))
	v.SetDefault(keyLogFile, shopload.DefaultLogFile)

	if projectCfg != nil {
		applyProjectDefaults(v, projectCfg)
	}

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, err
		}
	}

	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if _, ok := envBindings[f.Name]; !ok {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	return v, bindErr
}

// applyProjectDefaults layers shopload.yaml over the built-in defaults.
func applyProjectDefaults(v *viper.Viper, cfg *config.ProjectConfig) {
	setIf := func(key string, value any, set bool) {
		if set {
			v.SetDefault(key, value)
		}
	}

	c := cfg.Connection
	setIf(keyDialect, c.Dialect, c.Dialect != "")
	setIf(keyHost, c.Host, c.Host != "")
	setIf(keyPort, c.Port, c.Port != 0)
	setIf(keyUser, c.Username, c.Username != "")
	setIf(keyDatabase, c.Database, c.Database != "")
	setIf(keySSLMode, c.SSLMode, c.SSLMode != "")
	if c.RaiseOnWarnings != nil {
		v.SetDefault(keyRaiseOnWarnings, *c.RaiseOnWarnings)
	}
	setIf(keyAuthMethod, c.AuthMethod, c.AuthMethod != "")
	setIf(keyAWSRegion, c.AWSRegion, c.AWSRegion != "")
	setIf(keyAzureTenantID, c.AzureTenantID, c.AzureTenantID != "")
	setIf(keyAzureClientID, c.AzureClientID, c.AzureClientID != "")
	setIf(keyGoogleInstance, c.GoogleInstance, c.GoogleInstance != "")

	setIf(keyDataDir, cfg.DataDir, cfg.DataDir != "")
	setIf(keySampleSize, cfg.SampleSize, cfg.SampleSize != 0)
	setIf(keyRetryAttempts, cfg.Retry.Attempts, cfg.Retry.Attempts != 0)
	setIf(keyRetryDelay, cfg.RetryDelay(), cfg.Retry.Delay != "")
	setIf(keyRetryMaxDelay, cfg.RetryMaxDelay(), cfg.Retry.MaxDelay != "")
	setIf(keyLogFile, cfg.Log.File, cfg.Log.File != "")
	setIf(keyVerbose, cfg.Log.Verbose, cfg.Log.Verbose)
}

// loadProjectConfig loads .env and shopload.yaml from workDir.
// Returns nil config if shopload.yaml does not exist (not an error).
func loadProjectConfig(workDir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load(filepath.Join(workDir, ".env"))

	projectCfg, err := config.Load(workDir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil // Config file not found is not an error
		}
		return nil, fmt.Errorf("%w: failed to load %s: %w", shopload.ErrInvalidConfig, config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// durationSetting reads a duration from any layer. Env and flag values arrive
// as text, where a bare number counts seconds.
func durationSetting(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		if raw < 0 {
			return 0, fmt.Errorf("%w: %s cannot be negative", shopload.ErrInvalidConfig, key)
		}
		return raw, nil
	default:
		d, err := config.ParseDuration(fmt.Sprint(raw))
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", shopload.ErrInvalidConfig, key, err)
		}
		return d, nil
	}
}

// resolveSettings turns the layered values into validated configuration.
func resolveSettings(cmd *cobra.Command, workDir string) (*settings, error) {
	projectCfg, err := loadProjectConfig(workDir)
	if err != nil {
		return nil, err
	}

	v, err := newViper(cmd.Flags(), projectCfg)
	if err != nil {
		return nil, err
	}

	conn, err := resolveConnection(cmd.Flags(), v)
	if err != nil {
		return nil, err
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	baseDelay, err := durationSetting(v, keyRetryDelay)
	if err != nil {
		return nil, err
	}
	maxDelay, err := durationSetting(v, keyRetryMaxDelay)
	if err != nil {
		return nil, err
	}

	retryCfg := shopload.RetryConfig{
		Attempts:  v.GetInt(keyRetryAttempts),
		BaseDelay: baseDelay,
		MaxDelay:  maxDelay,
	}
	if err := retryCfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := v.GetString(keyDataDir)
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(workDir, dataDir)
	}

	logFile := v.GetString(keyLogFile)
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(workDir, logFile)
	}

	return &settings{
		conn:  conn,
		retry: retryCfg,
		run: shopload.RunConfig{
			DataDir:    dataDir,
			SampleSize: v.GetInt(keySampleSize),
			Verbose:    v.GetBool(keyVerbose),
		},
		logFile: logFile,
	}, nil
}

// resolveConnection builds the ConnectionConfig. A connection string, when
// present, replaces the granular settings; explicit flags still override it.
func resolveConnection(flags *pflag.FlagSet, v *viper.Viper) (*shopload.ConnectionConfig, error) {
	authMethod, err := shopload.ParseAuthMethod(v.GetString(keyAuthMethod))
	if err != nil {
		return nil, err
	}

	var conn *shopload.ConnectionConfig
	raiseOnWarnings := v.GetBool(keyRaiseOnWarnings)
	if connStr := v.GetString(keyConnection); connStr != "" {
		conn, err = db.ParseConnectionString(connStr)
		if err != nil {
			return nil, err
		}
		if flags.Changed(keyDialect) {
			return nil, fmt.Errorf("%w: --dialect cannot be combined with a connection string", shopload.ErrInvalidConfig)
		}
		for _, key := range connectionOverrides {
			if flags.Changed(key) {
				applyConnectionSetting(conn, key, v)
			}
		}
		if conn.Password == "" {
			conn.Password = v.GetString(keyPassword)
		}
		// raise_on_warnings inside the connection string beats env and file.
		if !flags.Changed(keyRaiseOnWarnings) && strings.Contains(strings.ToLower(connStr), "raise") {
			raiseOnWarnings = conn.RaiseOnWarnings
		}
	} else {
		dialect, err := shopload.ParseDialect(v.GetString(keyDialect))
		if err != nil {
			return nil, err
		}
		conn = &shopload.ConnectionConfig{
			Dialect:          dialect,
			Port:             dialect.DefaultPort(),
			Password:         v.GetString(keyPassword),
			AdditionalParams: make(map[string]string),
		}
		for _, key := range connectionOverrides {
			applyConnectionSetting(conn, key, v)
		}
		if dialect == shopload.DialectSQLite {
			conn.Host = ""
			conn.Port = 0
		}
	}

	conn.AuthMethod = authMethod
	conn.AppName = shopload.AppName
	conn.RaiseOnWarnings = raiseOnWarnings
	conn.AWSRegion = v.GetString(keyAWSRegion)
	conn.AzureTenantID = v.GetString(keyAzureTenantID)
	conn.AzureClientID = v.GetString(keyAzureClientID)
	conn.AzureClientSecret = v.GetString(keyAzureSecret)
	conn.GoogleInstance = v.GetString(keyGoogleInstance)

	return conn, nil
}

func applyConnectionSetting(conn *shopload.ConnectionConfig, key string, v *viper.Viper) {
	switch key {
	case keyHost:
		conn.Host = v.GetString(keyHost)
	case keyPort:
		if port := v.GetInt(keyPort); port != 0 {
			conn.Port = port
		}
	case keyUser:
		conn.Username = v.GetString(keyUser)
	case keyDatabase:
		conn.Database = v.GetString(keyDatabase)
	case keySSLMode:
		if mode := v.GetString(keySSLMode); mode != "" {
			conn.SSLMode = mode
		}
	}
}

// describe is the one-line summary logged in verbose mode.
func (s *settings) describe() string {
	return fmt.Sprintf("%s (auth %s, %d attempt(s), base delay %s), data dir %s",
		db.RedactedDSN(s.conn), s.conn.AuthMethod, s.retry.Attempts, s.retry.BaseDelay.Round(time.Millisecond), s.run.DataDir)
}
