// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"content-scoring-service/internal/infra/postgres"
	"content-scoring-service/internal/infra/redis"
	"content-scoring-service/internal/infra/searchindex"
)

// Config holds all application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Audit       AuditConfig       `mapstructure:"audit"`
	SearchIndex SearchIndexConfig `mapstructure:"search_index"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name       string   `mapstructure:"name"`
	Env        string   `mapstructure:"env"` // development, staging, production
	Port       int      `mapstructure:"port"`
	Debug      bool     `mapstructure:"debug"`
	AdminUsers []string `mapstructure:"admin_users"` // user IDs allowed on /admin routes
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	LogQueries   bool          `mapstructure:"log_queries"`
}

// Postgres converts the settings to the store's connection config.
func (c DatabaseConfig) Postgres() postgres.Config {
	return postgres.Config{
		Host:         c.Host,
		Port:         c.Port,
		Name:         c.Name,
		User:         c.User,
		Password:     c.Password,
		SSLMode:      c.SSLMode,
		MaxOpenConns: c.MaxOpenConns,
		MaxIdleConns: c.MaxIdleConns,
		MaxLifetime:  c.MaxLifetime,
		LogQueries:   c.LogQueries,
	}
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for the cache and distributed locks.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Client converts the settings to the redis package config.
func (c RedisConfig) Client() redis.Config {
	return redis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
	}
}

// CacheConfig holds earnings cache settings.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BalanceTTL time.Duration `mapstructure:"balance_ttl"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

// AuditConfig holds balance audit scheduler settings.
type AuditConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	OnStartup bool          `mapstructure:"on_startup"`
	Repair    bool          `mapstructure:"repair"`
}

// SearchIndexConfig holds search index client settings.
type SearchIndexConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Index   string        `mapstructure:"index"`
	AppID   string        `mapstructure:"app_id"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// Client converts the settings to the searchindex client config.
func (c SearchIndexConfig) Client() searchindex.Config {
	return searchindex.Config{
		BaseURL: c.BaseURL,
		Index:   c.Index,
		AppID:   c.AppID,
		APIKey:  c.APIKey,
		Timeout: c.Timeout,
		Retry: searchindex.RetryConfig{
			MaxAttempts: c.Retry.MaxAttempts,
			WaitTime:    c.Retry.WaitTime,
			MaxWaitTime: c.Retry.MaxWaitTime,
		},
		CB: searchindex.CBConfig{
			MaxRequests:  c.CB.MaxRequests,
			Interval:     c.CB.Interval,
			Timeout:      c.CB.Timeout,
			FailureRatio: c.CB.FailureRatio,
		},
	}
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// Validate checks settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port %d out of range", c.App.Port))
	}
	if c.Cache.Enabled && c.Cache.BalanceTTL <= 0 {
		errs = append(errs, errors.New("cache.balance_ttl must be positive when the cache is enabled"))
	}
	if c.Audit.Enabled {
		if c.Audit.Interval <= 0 {
			errs = append(errs, errors.New("audit.interval must be positive"))
		}
		if c.Audit.Timeout <= 0 || c.Audit.Timeout > c.Audit.Interval {
			errs = append(errs, errors.New("audit.timeout must be positive and not exceed audit.interval"))
		}
	}
	if c.SearchIndex.Enabled {
		if c.SearchIndex.BaseURL == "" || c.SearchIndex.Index == "" {
			errs = append(errs, errors.New("search_index.base_url and search_index.index are required"))
		}
		if c.SearchIndex.CB.FailureRatio <= 0 || c.SearchIndex.CB.FailureRatio > 1 {
			errs = append(errs, errors.New("search_index.circuit_breaker.failure_ratio must be in (0,1]"))
		}
	}

	return errors.Join(errs...)
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file: defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "content-scoring-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.admin_users", []string{})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "content_scoring")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.log_queries", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.balance_ttl", "5m")
	v.SetDefault("cache.key_prefix", "content-scoring")

	// Audit defaults
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.interval", "1h")
	v.SetDefault("audit.timeout", "5m")
	v.SetDefault("audit.on_startup", false)
	v.SetDefault("audit.repair", false)

	// Search index defaults
	v.SetDefault("search_index.enabled", false)
	v.SetDefault("search_index.base_url", "http://localhost:8081")
	v.SetDefault("search_index.index", "content")
	v.SetDefault("search_index.app_id", "")
	v.SetDefault("search_index.api_key", "")
	v.SetDefault("search_index.timeout", "5s")
	v.SetDefault("search_index.retry.max_attempts", 2)
	v.SetDefault("search_index.retry.wait_time", "200ms")
	v.SetDefault("search_index.retry.max_wait_time", "2s")
	v.SetDefault("search_index.circuit_breaker.max_requests", 3)
	v.SetDefault("search_index.circuit_breaker.interval", "60s")
	v.SetDefault("search_index.circuit_breaker.timeout", "30s")
	v.SetDefault("search_index.circuit_breaker.failure_ratio", 0.5)
}
