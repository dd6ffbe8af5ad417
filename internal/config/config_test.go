// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Uses temp files to exercise the full Load path

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
server:
  http_addr: "127.0.0.1:8080"
  app_base_uri: "https://desk.example.com"
tenant:
  id: "tenant-1"
apps:
  user_app_id: "user-app"
  sme_app_id: "sme-app"
database:
  path: "/tmp/desk.db"
answers:
  endpoint: "https://answers.example.com"
  key: "secret-key"
  test_environment: true
connector:
  service_url: "https://connector.example.com"
  token: "connector-token"
cache:
  settings_ttl: "30m"
logging:
  level: "debug"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "tenant-1", cfg.Tenant.ID)
	assert.Equal(t, "user-app", cfg.Apps.UserAppID)
	assert.Equal(t, "sme-app", cfg.Apps.SMEAppID)
	assert.True(t, cfg.Answers.TestEnvironment)
	assert.Equal(t, 30*time.Minute, cfg.Cache.SettingsTTL)
	// Omitted duration falls back to the default.
	assert.Equal(t, DefaultDedupeTTL, cfg.Cache.DedupeTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("DESK_TEST_ANSWERS_KEY", "from-env")

	cfg, err := Load(writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
apps:
  user_app_id: "user-app"
  sme_app_id: "sme-app"
database:
  path: "/tmp/desk.db"
answers:
  endpoint: "https://answers.example.com"
  key: "${DESK_TEST_ANSWERS_KEY}"
connector:
  service_url: "https://connector.example.com"
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Answers.Key)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [not a map"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoadBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  http_addr: "127.0.0.1:8080"
apps:
  user_app_id: "user-app"
  sme_app_id: "sme-app"
database:
  path: "/tmp/desk.db"
answers:
  endpoint: "https://answers.example.com"
connector:
  service_url: "https://connector.example.com"
cache:
  settings_ttl: "soon"
`))
	assert.ErrorContains(t, err, "parsing durations")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{HTTPAddr: "127.0.0.1:8080"},
			Apps:      AppsConfig{UserAppID: "user-app", SMEAppID: "sme-app"},
			Database:  DatabaseConfig{Path: "/tmp/desk.db"},
			Answers:   AnswersConfig{Endpoint: "https://answers.example.com"},
			Connector: ConnectorConfig{ServiceURL: "https://connector.example.com"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"missing user app", func(c *Config) { c.Apps.UserAppID = "" }, "apps.user_app_id"},
		{"missing sme app", func(c *Config) { c.Apps.SMEAppID = "" }, "apps.sme_app_id"},
		{"identical app ids", func(c *Config) { c.Apps.SMEAppID = "user-app" }, "must differ"},
		{"missing answers endpoint", func(c *Config) { c.Answers.Endpoint = "" }, "answers.endpoint"},
		{"missing connector url", func(c *Config) { c.Connector.ServiceURL = "" }, "connector.service_url"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}
