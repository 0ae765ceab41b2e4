package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names recognised in the environment field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root configuration structure for Atlas Core.
// All configuration is loaded from YAML and can be overridden by
// environment variables (ATLASCORE_SECTION_KEY).
type Config struct {
	Environment string         `yaml:"environment"`
	Database    DatabaseConfig `yaml:"database"`
	API         APIConfig      `yaml:"api"`
	Logging     LoggingConfig  `yaml:"logging"`
	Security    SecurityConfig `yaml:"security"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains the authentication and authorisation settings.
type SecurityConfig struct {
	Session     SessionConfig       `yaml:"session"`
	Password    PasswordConfig      `yaml:"password"`
	Preview     PreviewConfig       `yaml:"preview"`
	Permissions map[string][]string `yaml:"permissions"`
}

// SessionConfig contains session token settings.
type SessionConfig struct {
	// Secret signs session tokens. Required in production; in development
	// an ephemeral secret is generated when absent (with a loud warning).
	Secret string `yaml:"secret"`

	// TTLHours is the session lifetime. Default: 168 (7 days).
	TTLHours int `yaml:"ttl_hours"`

	// CookieDomain optionally scopes the session and preview cookies.
	CookieDomain string `yaml:"cookie_domain"`
}

// PasswordConfig contains credential hashing settings.
type PasswordConfig struct {
	// MaxConcurrentHashes caps simultaneous scrypt derivations.
	// 0 selects the built-in default.
	MaxConcurrentHashes int64 `yaml:"max_concurrent_hashes"`
}

// PreviewConfig contains the role-preview allow-list. Preview capability is
// granted per account here, never via roles.
type PreviewConfig struct {
	AllowedEmails     []string `yaml:"allowed_emails"`
	AllowedAccountIDs []string `yaml:"allowed_account_ids"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// Loading order: hardcoded defaults, then YAML file values, then
// ATLASCORE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Database: DatabaseConfig{
			Path:        "./data/atlascore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			Session: SessionConfig{
				TTLHours: 168,
			},
		},
	}
}

// applyEnvOverrides applies ATLASCORE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATLASCORE_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("ATLASCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ATLASCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ATLASCORE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	// Session secret (IMPORTANT: always set in production)
	if v := os.Getenv("ATLASCORE_SESSION_SECRET"); v != "" {
		cfg.Security.Session.Secret = v
	}
	if v := os.Getenv("ATLASCORE_COOKIE_DOMAIN"); v != "" {
		cfg.Security.Session.CookieDomain = v
	}
}

// minSessionSecretLength is the minimum accepted signing secret length.
// Short secrets make forged tokens a brute-force exercise.
const minSessionSecretLength = 32

// Validate checks the configuration for errors and security issues.
//
// A missing session secret is fatal here only in production. Development
// deployments degrade to an ephemeral secret generated at startup (see
// cmd/atlascore) — signature checking itself is never disabled.
func (c *Config) Validate() error {
	var errs []string

	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("environment must be %q or %q", EnvDevelopment, EnvProduction))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Environment == EnvProduction {
		if c.Security.Session.Secret == "" {
			errs = append(errs, "security.session.secret is required in production (set ATLASCORE_SESSION_SECRET)")
		} else if len(c.Security.Session.Secret) < minSessionSecretLength {
			errs = append(errs, "security.session.secret must be at least 32 characters")
		}
	}

	if c.Security.Session.TTLHours < 0 {
		errs = append(errs, "security.session.ttl_hours must not be negative")
	}
	if c.Security.Password.MaxConcurrentHashes < 0 {
		errs = append(errs, "security.password.max_concurrent_hashes must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsProduction reports whether the production environment is configured.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// SessionTTL returns the configured session lifetime as a Duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Security.Session.TTLHours) * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
