package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Session  SessionConfig  `mapstructure:"session"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// CatalogConfig holds remote catalog API configuration
type CatalogConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	PageSize             int           `mapstructure:"page_size"`

	// Degraded retry and background fill
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	StaggerInterval     time.Duration `mapstructure:"stagger_interval"`
	MaxBackgroundChunks int           `mapstructure:"max_background_chunks"`

	// Identifier shape accepted for favorites and cart lines
	IDPattern    string `mapstructure:"id_pattern"`
	DefaultColor string `mapstructure:"default_color"`

	// Filters used by the admin bulk sync
	Admin AdminFilterConfig `mapstructure:"admin"`
}

// AdminFilterConfig selects the part of the catalog mirrored by the bulk sync
type AdminFilterConfig struct {
	Category string `mapstructure:"category"`
	Gender   string `mapstructure:"gender"`
	Season   string `mapstructure:"season"`
	Sort     string `mapstructure:"sort"`
	PageSize int    `mapstructure:"page_size"`
}

// SessionConfig holds the bearer token of the signed-in user, if any
type SessionConfig struct {
	Token   string `mapstructure:"token"`
	UserKey string `mapstructure:"user_key"`
}

// SyncConfig holds worker settings for the chunk retry consumers
type SyncConfig struct {
	MaxWorkers      int           `mapstructure:"max_workers"`
	MaxChunkRetries int           `mapstructure:"max_chunk_retries"`
	ClaimIdle       time.Duration `mapstructure:"claim_idle"`
	PreferenceQuiet time.Duration `mapstructure:"preference_quiet"`
	PreferenceTTL   time.Duration `mapstructure:"preference_ttl"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Password      string        `mapstructure:"password"`
	Database      int           `mapstructure:"database"`
	ConsumerGroup string        `mapstructure:"consumer_group"`
	BlockTimeout  time.Duration `mapstructure:"block_timeout"`
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from YAML file with environment variable overrides.
// A missing config.yaml is not an error; defaults and environment apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.MaxBackgroundChunks < 0 {
		return fmt.Errorf("catalog.max_background_chunks must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "http://localhost:4000/api")
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.max_requests_per_second", 20)
	v.SetDefault("catalog.page_size", 24)
	v.SetDefault("catalog.retry_delay", time.Second)
	v.SetDefault("catalog.stagger_interval", 500*time.Millisecond)
	v.SetDefault("catalog.max_background_chunks", 5)
	v.SetDefault("catalog.id_pattern", "^[0-9a-fA-F]{24}$")
	v.SetDefault("catalog.default_color", "default")
	v.SetDefault("catalog.admin.sort", "featured")
	v.SetDefault("catalog.admin.page_size", 100)

	v.SetDefault("session.token", "")
	v.SetDefault("session.user_key", "admin")

	v.SetDefault("sync.max_workers", 4)
	v.SetDefault("sync.max_chunk_retries", 3)
	v.SetDefault("sync.claim_idle", time.Minute)
	v.SetDefault("sync.preference_quiet", 2*time.Second)
	v.SetDefault("sync.preference_ttl", 30*24*time.Hour)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "catalog_sync")
	v.SetDefault("redis.block_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
}
