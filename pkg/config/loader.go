package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from config.yaml (if present) and environment
// variables, then applies defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("METRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without the METRICS_ prefix for container deploys
	v.BindEnv("http.port", "HTTP_PORT", "METRICS_HTTP_PORT")
	v.BindEnv("session.secret", "SESSION_SECRET", "METRICS_SESSION_SECRET")
	v.BindEnv("dataset.path", "DATASET_PATH", "METRICS_DATASET_PATH")
	v.BindEnv("dataset.source_url", "DATASET_SOURCE_URL")
	v.BindEnv("dataset.source_key", "DATASET_SOURCE_KEY")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "metrics-admin"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.BasePath == "" {
		c.HTTP.BasePath = "/admin"
	}
	if c.Session.Secret == "" {
		// Demo fallback; production deploys set SESSION_SECRET.
		c.Session.Secret = "metrics-admin-demo-secret"
	}
	if c.Session.TokenTTL <= 0 {
		c.Session.TokenTTL = 12 * time.Hour
	}
	if c.Charts.CacheTTL <= 0 {
		c.Charts.CacheTTL = 5 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}
