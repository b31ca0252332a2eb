package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Dialect         string `yaml:"dialect"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"sslmode,omitempty"`
	RaiseOnWarnings *bool  `yaml:"raise_on_warnings,omitempty"`
	AuthMethod      string `yaml:"auth_method,omitempty"`
	AzureTenantID   string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID   string `yaml:"azure_client_id,omitempty"`
	AWSRegion       string `yaml:"aws_region,omitempty"`
	GoogleInstance  string `yaml:"google_instance,omitempty"`
}

type RetryConfig struct {
	Attempts int    `yaml:"attempts"`
	Delay    string `yaml:"delay"`
	MaxDelay string `yaml:"max_delay,omitempty"`
}

type LogConfig struct {
	File    string `yaml:"file"`
	Verbose bool   `yaml:"verbose"`
}

// ProjectConfig is the content of shopload.yaml. Zero values mean "not set".
type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	DataDir    string           `yaml:"data_dir"`
	SampleSize int              `yaml:"sample_size"`
	Retry      RetryConfig      `yaml:"retry"`
	Log        LogConfig        `yaml:"log"`
}

const ConfigFileName = "shopload.yaml"

func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

func (c *ProjectConfig) validate() error {
	var errs []error
	if c.Retry.Attempts < 0 {
		errs = append(errs, fmt.Errorf("retry.attempts cannot be negative"))
	}
	if _, err := ParseDuration(c.Retry.Delay); err != nil {
		errs = append(errs, fmt.Errorf("retry.delay: %w", err))
	}
	if _, err := ParseDuration(c.Retry.MaxDelay); err != nil {
		errs = append(errs, fmt.Errorf("retry.max_delay: %w", err))
	}
	if c.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("sample_size cannot be negative"))
	}
	return errors.Join(errs...)
}

// RetryDelay returns retry.delay, or zero when unset.
func (c *ProjectConfig) RetryDelay() time.Duration {
	d, _ := ParseDuration(c.Retry.Delay)
	return d
}

// RetryMaxDelay returns retry.max_delay, or zero when unset.
func (c *ProjectConfig) RetryMaxDelay() time.Duration {
	d, _ := ParseDuration(c.Retry.MaxDelay)
	return d
}

// ParseDuration parses a duration such as "500ms" or "2m". A bare number is
// a count of seconds. Empty means zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(secs * float64(time.Second))
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("%s is negative", s)
	}
	return d, nil
}
