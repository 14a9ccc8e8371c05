package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/fleetrent/fleetrent/internal/logger"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutDownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig holds the remote store (Postgres) settings.
type DatabaseConfig struct {
	URL           string        `mapstructure:"url" validate:"required"`
	MaxConns      int32         `mapstructure:"max_conns" validate:"gt=0"`
	ProbeInterval time.Duration `mapstructure:"probe_interval" validate:"gt=0"`
}

// FallbackConfig holds the durable local fallback store settings.
type FallbackConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// CacheConfig holds the query cache TTLs per query class.
// Volatile queries (mutable subsets like active rentals) get the shortest
// TTL, free-text searches a medium one, plain list pages the longest.
type CacheConfig struct {
	ListTTL   time.Duration `mapstructure:"list_ttl" validate:"gt=0"`
	ActiveTTL time.Duration `mapstructure:"active_ttl" validate:"gt=0,ltefield=ListTTL"`
	SearchTTL time.Duration `mapstructure:"search_ttl" validate:"gt=0"`
}

// SettingsConfig holds resolver-related settings.
type SettingsConfig struct {
	DefaultsFile string `mapstructure:"defaults_file"` // optional overrides, hot-reloaded
}

// MiscConfig holds everything that does not fit elsewhere.
type MiscConfig struct {
	GinMode  string `mapstructure:"gin_mode"`
	LogLevel string `mapstructure:"log_level"`
}

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Fallback FallbackConfig `mapstructure:"fallback"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Settings SettingsConfig `mapstructure:"settings"`
	Misc     MiscConfig     `mapstructure:"misc"`
}

// LoadConfig reads config.yaml (if present) plus FLEETRENT_* env overrides.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Defaults to allow running without config file
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.idle_timeout", 120*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("server.request_timeout", 10*time.Second)
	viper.SetDefault("server.cors_allowed_origins", "*")
	viper.SetDefault("database.url", "postgres://localhost:5432/fleetrent")
	viper.SetDefault("database.max_conns", 8)
	viper.SetDefault("database.probe_interval", 15*time.Second)
	viper.SetDefault("fallback.path", "./data/fallback")
	viper.SetDefault("cache.list_ttl", 5*time.Minute)
	viper.SetDefault("cache.active_ttl", 1*time.Minute)
	viper.SetDefault("cache.search_ttl", 2*time.Minute)
	viper.SetDefault("settings.defaults_file", "")
	viper.SetDefault("misc.gin_mode", "release")
	viper.SetDefault("misc.log_level", "info")

	// Environment variables like FLEETRENT_SERVER_PORT override everything
	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLEETRENT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.WithComponent("config").Info("No config file found, using defaults and env vars")
		} else {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
