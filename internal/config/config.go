package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Broadcast BroadcastConfig `yaml:"broadcast" mapstructure:"broadcast"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the inference API client.
type APIConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// StoreConfig configures where the session is persisted.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DashboardConfig sizes the dashboard cards.
type DashboardConfig struct {
	DelayPageSize    int `yaml:"delay_page_size" mapstructure:"delay_page_size"`
	AnomalyPageSize  int `yaml:"anomaly_page_size" mapstructure:"anomaly_page_size"`
	PageIncrement    int `yaml:"page_increment" mapstructure:"page_increment"`
	ActiveCarriers   int `yaml:"active_carriers" mapstructure:"active_carriers"`
	ETAShipmentLimit int `yaml:"eta_shipment_limit" mapstructure:"eta_shipment_limit"`
}

// BroadcastConfig configures optional forwarding of dashboard summaries.
type BroadcastConfig struct {
	Kafka KafkaConfig `yaml:"kafka" mapstructure:"kafka"`
}

// KafkaConfig lists the brokers summaries are forwarded to. Forwarding is
// off when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOGIOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.rate_per_sec", 0)
	v.SetDefault("api.burst", 1)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "logiops.db")
	v.SetDefault("dashboard.delay_page_size", 40)
	v.SetDefault("dashboard.anomaly_page_size", 30)
	v.SetDefault("dashboard.page_increment", 20)
	v.SetDefault("dashboard.active_carriers", 5)
	v.SetDefault("dashboard.eta_shipment_limit", 200)
	v.SetDefault("broadcast.kafka.brokers", []string{})
	v.SetDefault("broadcast.kafka.topic", "logiops.summaries")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a mode depends on. Modes are "cli" and
// "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url is required")
	}
	if c.API.TimeoutSecs <= 0 {
		errs = append(errs, "api.timeout_secs must be > 0")
	}
	if c.API.RatePerSec < 0 {
		errs = append(errs, "api.rate_per_sec must be >= 0")
	}
	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	d := c.Dashboard
	if d.DelayPageSize <= 0 || d.AnomalyPageSize <= 0 || d.PageIncrement <= 0 || d.ETAShipmentLimit <= 0 {
		errs = append(errs, "dashboard page sizes must be > 0")
	}
	if d.ActiveCarriers < 0 {
		errs = append(errs, "dashboard.active_carriers must be >= 0")
	}
	if len(c.Broadcast.Kafka.Brokers) > 0 && c.Broadcast.Kafka.Topic == "" {
		errs = append(errs, "broadcast.kafka.topic is required when brokers are set")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
