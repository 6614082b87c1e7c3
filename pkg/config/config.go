package config

import "time"

// Config is the application configuration for the metrics admin server.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Session SessionConfig `mapstructure:"session"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port     int    `mapstructure:"port"`
	BasePath string `mapstructure:"base_path"`
}

type SessionConfig struct {
	Secret    string        `mapstructure:"secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	StorePath string        `mapstructure:"store_path"`
}

type DatasetConfig struct {
	// Path points at a JSON dataset file. Empty selects the built-in demo
	// dataset.
	Path string `mapstructure:"path"`
	// SourceURL points at a remote metrics API. Takes precedence over Path.
	SourceURL string        `mapstructure:"source_url"`
	SourceKey string        `mapstructure:"source_key"`
	Delay     time.Duration `mapstructure:"delay"`
}

type ChartsConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	Theme        string        `mapstructure:"theme"`
	AssetsHost   string        `mapstructure:"assets_host"`
	ManifestPath string        `mapstructure:"manifest_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
