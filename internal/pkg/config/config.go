package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// RoutingConfig configures the upstream routing provider. An empty
// APIKey leaves the provider unconfigured; estimation then degrades to
// the geometric fallback.
type RoutingConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Endpoint      string `mapstructure:"endpoint"`
	TimeoutSec    int    `mapstructure:"timeout_seconds"`
	MinIntervalMS int    `mapstructure:"min_interval_ms"`
}

// CacheConfig selects the result cache backend and its tuning knobs.
type CacheConfig struct {
	Backend      string `mapstructure:"backend"` // "memory" or "valkey"
	ValkeyAddr   string `mapstructure:"valkey_addr"`
	TTLSeconds   int    `mapstructure:"ttl_seconds"`
	KeyPrecision int    `mapstructure:"key_precision"` // decimal degrees
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "travel")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "gamepoint")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("routing.api_key", "")
	v.SetDefault("routing.endpoint", "")
	v.SetDefault("routing.timeout_seconds", 10)
	v.SetDefault("routing.min_interval_ms", 300)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.key_precision", 3)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GAMEPOINT_ROUTING_API_KEY → routing.api_key
	v.SetEnvPrefix("GAMEPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Routing.TimeoutSec <= 0 {
		errs = append(errs, "routing.timeout_seconds must be positive")
	}
	if c.Routing.MinIntervalMS < 0 {
		errs = append(errs, "routing.min_interval_ms must not be negative")
	}
	switch c.Cache.Backend {
	case "memory", "valkey":
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be memory or valkey, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "valkey" && c.Cache.ValkeyAddr == "" {
		errs = append(errs, "cache.valkey_addr is required for the valkey backend")
	}
	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, "cache.ttl_seconds must be positive")
	}
	if c.Cache.KeyPrecision <= 0 || c.Cache.KeyPrecision > 6 {
		errs = append(errs, fmt.Sprintf("cache.key_precision must be 1-6, got %d", c.Cache.KeyPrecision))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
