package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSecs)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "logiops.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 40, cfg.Dashboard.DelayPageSize)
	assert.Equal(t, 30, cfg.Dashboard.AnomalyPageSize)
	assert.Equal(t, 20, cfg.Dashboard.PageIncrement)
	assert.Equal(t, 5, cfg.Dashboard.ActiveCarriers)
	assert.Equal(t, 200, cfg.Dashboard.ETAShipmentLimit)
	assert.Empty(t, cfg.Broadcast.Kafka.Brokers)
	assert.Equal(t, "logiops.summaries", cfg.Broadcast.Kafka.Topic)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
api:
  base_url: https://ml.example.com
store:
  driver: postgres
  database_url: postgres://localhost/logiops
log:
  level: debug
  format: console
broadcast:
  kafka:
    brokers: ["kafka-1:9092", "kafka-2:9092"]
dashboard:
  delay_page_size: 80
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://ml.example.com", cfg.API.BaseURL)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broadcast.Kafka.Brokers)
	assert.Equal(t, 80, cfg.Dashboard.DelayPageSize)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Dashboard.AnomalyPageSize)
	assert.Equal(t, "logiops.summaries", cfg.Broadcast.Kafka.Topic)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LOGIOPS_STORE_DRIVER", "sqlite")
	t.Setenv("LOGIOPS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LOGIOPS_SERVER_PORT", "3000")
	t.Setenv("LOGIOPS_API_BASE_URL", "http://ml:8000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://ml:8000", cfg.API.BaseURL)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://127.0.0.1:8000"
	cfg.API.TimeoutSecs = 30
	cfg.Store.Driver = "sqlite"
	cfg.Dashboard = DashboardConfig{
		DelayPageSize:    40,
		AnomalyPageSize:  30,
		PageIncrement:    20,
		ActiveCarriers:   5,
		ETAShipmentLimit: 200,
	}
	cfg.Broadcast.Kafka.Topic = "logiops.summaries"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// The CLI does not listen.
	assert.NoError(t, cfg.Validate("cli"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidatePostgresRequiresURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("cli")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required for postgres")

	cfg.Store.DatabaseURL = "postgres://localhost/logiops"
	assert.NoError(t, cfg.Validate("cli"))

	cfg.Store.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate("cli"), "store.driver must be sqlite or postgres")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validDefaults()
	cfg.API.BaseURL = ""
	cfg.API.RatePerSec = -1
	cfg.Dashboard.PageIncrement = 0
	cfg.Broadcast.Kafka.Brokers = []string{"kafka:9092"}
	cfg.Broadcast.Kafka.Topic = ""

	err := cfg.Validate("cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url is required")
	assert.Contains(t, err.Error(), "api.rate_per_sec must be >= 0")
	assert.Contains(t, err.Error(), "dashboard page sizes must be > 0")
	assert.Contains(t, err.Error(), "broadcast.kafka.topic is required")
}
