// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	ECB      ECBConfig     `mapstructure:"ecb"`
	Banxico  BanxicoConfig `mapstructure:"banxico"`
	Resolver ResolverConfig
	Worker   WorkerConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for Asynq task queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for application cache (required).
}

// ECBConfig holds settings for the daily ECB reference-rate source.
type ECBConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// BanxicoConfig holds settings for the Banxico SIE source. The source is
// enabled only when a token is configured.
type BanxicoConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Series  string `mapstructure:"series"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ResolverConfig selects the source conversions resolve against and bounds
// the backward date-fallback search.
type ResolverConfig struct {
	Source          string `mapstructure:"source"`
	MaxFallbackDays int    `mapstructure:"max_fallback_days"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	ConversionTTLSec     int `mapstructure:"conversion_ttl_sec"`
	ProviderWindowTTLSec int `mapstructure:"provider_window_ttl_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("FXSVC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.serve_swagger", true)
	viper.SetDefault("server.serve_asynqmon", true)
	viper.SetDefault("database.host", "db")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "fxdb")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime_sec", 300)
	viper.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	viper.SetDefault("redis.cache_addr", "redis_cache:6381")
	viper.SetDefault("ecb.base_url", "https://api.frankfurter.dev/v1")
	viper.SetDefault("ecb.timeout_sec", 10)
	viper.SetDefault("banxico.base_url", "https://www.banxico.org.mx/SieAPIRest/service/v1")
	viper.SetDefault("banxico.token", "")
	viper.SetDefault("banxico.series", "SF43718")
	viper.SetDefault("banxico.timeout_sec", 10)
	viper.SetDefault("resolver.source", "ecb")
	viper.SetDefault("resolver.max_fallback_days", 7)
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("worker.timeout_sec", 60)
	viper.SetDefault("worker.check_interval_sec", 5)
	viper.SetDefault("cache.conversion_ttl_sec", 600)
	viper.SetDefault("cache.provider_window_ttl_sec", 3600)

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set FXSVC_REDIS_ASYNQ_ADDR)"))
	}
	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set FXSVC_REDIS_CACHE_ADDR)"))
	}

	if c.Resolver.Source == "" {
		errs = append(errs, fmt.Errorf("resolver.source is required"))
	}
	if c.Resolver.MaxFallbackDays < 0 {
		errs = append(errs, fmt.Errorf("resolver.max_fallback_days must be non-negative, got %d", c.Resolver.MaxFallbackDays))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	if c.Cache.ConversionTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.conversion_ttl_sec must be positive, got %d", c.Cache.ConversionTTLSec))
	}
	if c.Cache.ProviderWindowTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.provider_window_ttl_sec must be positive, got %d", c.Cache.ProviderWindowTTLSec))
	}

	return errors.Join(errs...)
}
