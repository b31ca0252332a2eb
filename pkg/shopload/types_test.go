package shopload_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vvka-141/shopload/pkg/shopload"
)

func validMySQLConfig() shopload.ConnectionConfig {
	return shopload.ConnectionConfig{
		Dialect:  shopload.DialectMySQL,
		Host:     "127.0.0.1",
		Port:     3306,
		Database: "shop",
		Username: "root",
	}
}

func TestConnectionConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *shopload.ConnectionConfig)
		wantError bool
		errorText string
	}{
		{name: "valid mysql config", modify: func(c *shopload.ConnectionConfig) {}},
		{
			name: "valid sqlite config without host",
			modify: func(c *shopload.ConnectionConfig) {
				c.Dialect = shopload.DialectSQLite
				c.Host, c.Port, c.Username = "", 0, ""
				c.Database = "/tmp/shop.db"
			},
		},
		{
			name:      "unknown dialect",
			modify:    func(c *shopload.ConnectionConfig) { c.Dialect = "oracle" },
			wantError: true,
			errorText: `dialect "oracle"`,
		},
		{
			name:      "missing database",
			modify:    func(c *shopload.ConnectionConfig) { c.Database = "" },
			wantError: true,
			errorText: "database name is required",
		},
		{
			name:      "missing host",
			modify:    func(c *shopload.ConnectionConfig) { c.Host = "" },
			wantError: true,
			errorText: "host is required",
		},
		{
			name:      "port out of range",
			modify:    func(c *shopload.ConnectionConfig) { c.Port = 70000 },
			wantError: true,
			errorText: "port 70000 out of range",
		},
		{
			name:      "google iam on mysql",
			modify:    func(c *shopload.ConnectionConfig) { c.AuthMethod = shopload.AuthMethodGoogleIAM },
			wantError: true,
			errorText: "only supported for postgres",
		},
		{
			name: "cloud auth on sqlite",
			modify: func(c *shopload.ConnectionConfig) {
				c.Dialect = shopload.DialectSQLite
				c.AuthMethod = shopload.AuthMethodAWSIAM
			},
			wantError: true,
			errorText: "sqlite does not support AWS IAM auth",
		},
		{
			name:      "negative timeout",
			modify:    func(c *shopload.ConnectionConfig) { c.ConnectTimeout = -time.Second },
			wantError: true,
			errorText: "connect timeout cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validMySQLConfig()
			tt.modify(&config)

			err := config.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, shopload.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.errorText) {
					t.Errorf("expected error containing %q, got %q", tt.errorText, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConnectionConfig_ValidateReportsEveryProblem(t *testing.T) {
	config := shopload.ConnectionConfig{Dialect: shopload.DialectPostgres}

	err := config.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"database name is required", "host is required", "port 0 out of range", "username is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestRetryConfig_Validate(t *testing.T) {
	if err := shopload.DefaultRetryConfig().Validate(); err != nil {
		t.Errorf("default retry config invalid: %v", err)
	}

	for _, cfg := range []shopload.RetryConfig{
		{Attempts: 0, BaseDelay: time.Second},
		{Attempts: 3, BaseDelay: -time.Second},
		{Attempts: 3, BaseDelay: time.Second, MaxDelay: -time.Second},
	} {
		if err := cfg.Validate(); !errors.Is(err, shopload.ErrInvalidConfig) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := shopload.DefaultRetryConfig()
	if cfg.Attempts != 3 || cfg.BaseDelay != 2*time.Second || cfg.MaxDelay != 0 {
		t.Errorf("DefaultRetryConfig() = %+v, want 3 attempts with an uncapped 2s base delay", cfg)
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    shopload.Dialect
		wantErr bool
	}{
		{"mysql", shopload.DialectMySQL, false},
		{"MySQL", shopload.DialectMySQL, false},
		{"postgres", shopload.DialectPostgres, false},
		{"postgresql", shopload.DialectPostgres, false},
		{" pg ", shopload.DialectPostgres, false},
		{"sqlite3", shopload.DialectSQLite, false},
		{"mariadb", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := shopload.ParseDialect(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shopload.ErrUnsupportedDialect) {
					t.Errorf("ParseDialect(%q) error = %v, want ErrUnsupportedDialect", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestDialect_DefaultPort(t *testing.T) {
	if got := shopload.DialectMySQL.DefaultPort(); got != 3306 {
		t.Errorf("mysql default port = %d", got)
	}
	if got := shopload.DialectPostgres.DefaultPort(); got != 5432 {
		t.Errorf("postgres default port = %d", got)
	}
	if got := shopload.DialectSQLite.DefaultPort(); got != 0 {
		t.Errorf("sqlite default port = %d", got)
	}
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		input string
		want  shopload.AuthMethod
	}{
		{"", shopload.AuthMethodStandard},
		{"password", shopload.AuthMethodStandard},
		{"AWS", shopload.AuthMethodAWSIAM},
		{"gcp", shopload.AuthMethodGoogleIAM},
		{"entra", shopload.AuthMethodAzureEntraID},
	}
	for _, tt := range tests {
		got, err := shopload.ParseAuthMethod(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParseAuthMethod(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}

	if _, err := shopload.ParseAuthMethod("kerberos"); !errors.Is(err, shopload.ErrUnsupportedAuthMethod) {
		t.Errorf("expected ErrUnsupportedAuthMethod, got %v", err)
	}
}

func TestAuthMethod_String(t *testing.T) {
	if got := shopload.AuthMethodAzureEntraID.String(); got != "Azure Entra ID" {
		t.Errorf("String() = %q", got)
	}
	if got := shopload.AuthMethod(42).String(); got != "Unknown(42)" {
		t.Errorf("String() = %q", got)
	}
	if shopload.AuthMethod(42).IsValid() {
		t.Error("AuthMethod(42) should be invalid")
	}
}
