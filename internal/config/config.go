// ABOUTME: Configuration loading and parsing for desk-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete desk-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tenant    TenantConfig    `yaml:"tenant"`
	Apps      AppsConfig      `yaml:"apps"`
	Database  DatabaseConfig  `yaml:"database"`
	Answers   AnswersConfig   `yaml:"answers"`
	Connector ConnectorConfig `yaml:"connector"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	// AppBaseURI is the externally reachable base URL, used for static
	// card assets like tour images.
	AppBaseURI string `yaml:"app_base_uri"`
}

// TenantConfig restricts which tenant's traffic the gateway serves
type TenantConfig struct {
	ID string `yaml:"id"`
}

// AppsConfig holds the registered identities of the two bot surfaces.
// Inbound traffic is routed by which of the two the recipient matches.
type AppsConfig struct {
	UserAppID string `yaml:"user_app_id"`
	SMEAppID  string `yaml:"sme_app_id"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AnswersConfig holds knowledge-base backend configuration
type AnswersConfig struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`

	// TestEnvironment queries the backend's unpublished test index
	// instead of the published one. Meant for staging deployments that
	// preview draft answers.
	TestEnvironment bool `yaml:"test_environment"`
}

// ConnectorConfig holds outbound conversation transport configuration
type ConnectorConfig struct {
	ServiceURL string `yaml:"service_url"`
	Token      string `yaml:"token"`
}

// AuthConfig holds admin API authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// CacheConfig holds settings-cache timing configuration
type CacheConfig struct {
	SettingsTTL time.Duration `yaml:"-"`
	DedupeTTL   time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SettingsTTLRaw string `yaml:"settings_ttl"`
	DedupeTTLRaw   string `yaml:"dedupe_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default cache timings applied when the config file omits them.
const (
	DefaultSettingsTTL = time.Hour
	DefaultDedupeTTL   = 5 * time.Minute
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Apps.UserAppID == "" {
		return fmt.Errorf("apps.user_app_id is required")
	}
	if c.Apps.SMEAppID == "" {
		return fmt.Errorf("apps.sme_app_id is required")
	}
	// The router keys on the recipient identity, so the two surfaces
	// cannot share one.
	if c.Apps.UserAppID == c.Apps.SMEAppID {
		return fmt.Errorf("apps.user_app_id and apps.sme_app_id must differ")
	}

	if c.Answers.Endpoint == "" {
		return fmt.Errorf("answers.endpoint is required")
	}

	if c.Connector.ServiceURL == "" {
		return fmt.Errorf("connector.service_url is required")
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	cfg.Cache.SettingsTTL = DefaultSettingsTTL
	if cfg.Cache.SettingsTTLRaw != "" {
		cfg.Cache.SettingsTTL, err = time.ParseDuration(cfg.Cache.SettingsTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing settings_ttl %q: %w", cfg.Cache.SettingsTTLRaw, err)
		}
	}

	cfg.Cache.DedupeTTL = DefaultDedupeTTL
	if cfg.Cache.DedupeTTLRaw != "" {
		cfg.Cache.DedupeTTL, err = time.ParseDuration(cfg.Cache.DedupeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_ttl %q: %w", cfg.Cache.DedupeTTLRaw, err)
		}
	}

	return nil
}
