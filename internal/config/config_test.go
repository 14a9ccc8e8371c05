package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			IdleTimeout:        120 * time.Second,
			ShutDownTimeout:    5 * time.Second,
			RequestTimeout:     10 * time.Second,
			CORSAllowedOrigins: "*",
		},
		Database: DatabaseConfig{
			URL:           "postgres://localhost:5432/fleetrent",
			MaxConns:      8,
			ProbeInterval: 15 * time.Second,
		},
		Fallback: FallbackConfig{
			Path: "/tmp/fallback",
		},
		Cache: CacheConfig{
			ListTTL:   5 * time.Minute,
			ActiveTTL: 1 * time.Minute,
			SearchTTL: 2 * time.Minute,
		},
		Misc: MiscConfig{
			GinMode:  "release",
			LogLevel: "info",
		},
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()

	if err := cfg.validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero port", 0},
		{"negative port", -1},
		{"too high port", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			if err := cfg.validate(); err == nil {
				t.Errorf("expected error for port %d", tt.port)
			}
		})
	}
}

func TestConfig_Validate_EmptyDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = ""

	if err := cfg.validate(); err == nil {
		t.Error("expected error for empty database url")
	}
}

func TestConfig_Validate_EmptyFallbackPath(t *testing.T) {
	cfg := validConfig()
	cfg.Fallback.Path = ""

	if err := cfg.validate(); err == nil {
		t.Error("expected error for empty fallback path")
	}
}

func TestConfig_Validate_InvalidTimeouts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutDownTimeout = 0 }},
		{"zero probe interval", func(c *Config) { c.Database.ProbeInterval = 0 }},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := cfg.validate(); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestConfig_Validate_CacheTTLs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero list ttl", func(c *Config) { c.Cache.ListTTL = 0 }},
		{"zero active ttl", func(c *Config) { c.Cache.ActiveTTL = 0 }},
		{"zero search ttl", func(c *Config) { c.Cache.SearchTTL = 0 }},
		{"active ttl above list ttl", func(c *Config) { c.Cache.ActiveTTL = 10 * time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := cfg.validate(); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
