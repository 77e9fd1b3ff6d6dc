// Package config loads the YAML configuration shared by the CLI and the
// server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nickyhof/SchemaSpec/spec"
)

// Config holds all SchemaSpec configuration.
type Config struct {
	// Identity recorded on snapshot commits
	Identity IdentityConfig `yaml:"identity"`

	// Namespace and character set of the expected schema
	Storage StorageConfig `yaml:"storage"`

	// Path to the storage object manifest
	Manifest string `yaml:"manifest"`

	Persistence PersistenceConfig `yaml:"persistence"`
	Live        LiveConfig        `yaml:"live"`
	Server      ServerConfig      `yaml:"server"`
	Export      ExportConfig      `yaml:"export"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type IdentityConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// StorageConfig configures the type mapper and database naming.
type StorageConfig struct {
	Namespace     string `yaml:"namespace"`
	UTF8Charset   string `yaml:"utf8_charset"`
	UTF8Collation string `yaml:"utf8_collation"`
}

// PersistenceConfig selects the snapshot store. An empty BaseDir keeps
// snapshots in memory.
type PersistenceConfig struct {
	BaseDir string `yaml:"base_dir"`
	GitURL  string `yaml:"git_url"`
}

// LiveConfig describes the live database COMPARE checks against.
type LiveConfig struct {
	Driver   string            `yaml:"driver"` // sqlite, duckdb
	DSN      string            `yaml:"dsn"`
	MainName string            `yaml:"main_name"`
	Attach   map[string]string `yaml:"attach"` // database name -> path
}

type ServerConfig struct {
	Port    int        `yaml:"port"`
	TLSCert string     `yaml:"tls_cert"`
	TLSKey  string     `yaml:"tls_key"`
	Auth    AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

type ExportConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	options := spec.DefaultOptions()
	return &Config{
		Identity: IdentityConfig{
			Name:  "SchemaSpec",
			Email: "schemaspec@localhost",
		},
		Storage: StorageConfig{
			Namespace:     options.Namespace,
			UTF8Charset:   options.UTF8Charset,
			UTF8Collation: options.UTF8Collation,
		},
		Manifest: "schema.yaml",
		Server: ServerConfig{
			Port: 3307,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SpecOptions returns the build options described by the storage section.
func (c *Config) SpecOptions() spec.Options {
	return spec.Options{
		Namespace:     c.Storage.Namespace,
		UTF8Charset:   c.Storage.UTF8Charset,
		UTF8Collation: c.Storage.UTF8Collation,
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SCHEMASPEC_NAMESPACE"); v != "" {
		c.Storage.Namespace = v
	}
	if v := os.Getenv("SCHEMASPEC_MANIFEST"); v != "" {
		c.Manifest = v
	}
	if v := os.Getenv("SCHEMASPEC_BASE_DIR"); v != "" {
		c.Persistence.BaseDir = v
	}
	if v := os.Getenv("SCHEMASPEC_GIT_URL"); v != "" {
		c.Persistence.GitURL = v
	}
	if v := os.Getenv("SCHEMASPEC_LIVE_DRIVER"); v != "" {
		c.Live.Driver = v
	}
	if v := os.Getenv("SCHEMASPEC_LIVE_DSN"); v != "" {
		c.Live.DSN = v
	}
	if v := os.Getenv("SCHEMASPEC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SCHEMASPEC_JWT_SECRET"); v != "" {
		c.Server.Auth.JWTSecret = v
		c.Server.Auth.Enabled = true
	}
	if v := os.Getenv("SCHEMASPEC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	// Standard AWS variables take precedence over the file.
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Export.S3.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.Export.S3.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.Export.S3.SecretKey = v
	}
}

var (
	ValidLogLevels   = []string{"debug", "info", "warn", "error"}
	ValidLiveDrivers = []string{"sqlite", "duckdb"}
)

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Storage.Namespace == "" {
		return fmt.Errorf("storage namespace is required")
	}
	if c.Storage.UTF8Charset == "" || c.Storage.UTF8Collation == "" {
		return fmt.Errorf("storage utf8_charset and utf8_collation are required")
	}

	if c.Live.Driver != "" && !contains(ValidLiveDrivers, c.Live.Driver) {
		return fmt.Errorf("invalid live driver: %s (valid: %v)", c.Live.Driver, ValidLiveDrivers)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key must be set together")
	}
	if c.Server.Auth.Enabled && c.Server.Auth.JWTSecret == "" {
		return fmt.Errorf("auth enabled but no jwt_secret configured (set SCHEMASPEC_JWT_SECRET)")
	}

	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	return nil
}
