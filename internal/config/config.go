package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	CMS      CMSConfig      `mapstructure:"cms"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Compare  CompareConfig  `mapstructure:"compare"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CMSConfig holds the headless CMS (Sanity) API configuration
type CMSConfig struct {
	ProjectID            string `mapstructure:"project_id"`
	Dataset              string `mapstructure:"dataset"`
	APIVersion           string `mapstructure:"api_version"`
	UseCDN               bool   `mapstructure:"use_cdn"`
	BaseURL              string `mapstructure:"base_url"` // Overrides the host derived from project_id
	Token                string `mapstructure:"token"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	WebhookSecret        string `mapstructure:"webhook_secret"` // Empty accepts unsigned webhook calls
}

// CatalogConfig holds listing and refresh settings
type CatalogConfig struct {
	PageSize        int `mapstructure:"page_size"`
	RefreshInterval int `mapstructure:"refresh_interval"`
	RelatedLimit    int `mapstructure:"related_limit"`
	Workers         int `mapstructure:"workers"`
}

// CompareConfig holds compare session settings
type CompareConfig struct {
	StorageKey string `mapstructure:"storage_key"`
	SessionTTL int    `mapstructure:"session_ttl"` // hours
	CookieName string `mapstructure:"cookie_name"`
	CacheSize  int    `mapstructure:"cache_size"` // sessions kept in memory
}

func (c CompareConfig) TTL() time.Duration {
	return time.Duration(c.SessionTTL) * time.Hour
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.CMS.ProjectID == "" && c.CMS.BaseURL == "" {
		errs = append(errs, errors.New("cms.project_id is required"))
	}
	if c.CMS.Dataset == "" {
		errs = append(errs, errors.New("cms.dataset is required"))
	}
	if c.Catalog.PageSize <= 0 {
		errs = append(errs, errors.New("catalog.page_size must be positive"))
	}
	if c.Catalog.RefreshInterval <= 0 {
		errs = append(errs, errors.New("catalog.refresh_interval must be positive"))
	}
	if c.Compare.StorageKey == "" {
		errs = append(errs, errors.New("compare.storage_key is required"))
	}
	if c.Redis.MinIdleTime <= 0 {
		errs = append(errs, errors.New("redis.min_idle_time must be positive"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("cms.project_id", "")
	v.SetDefault("cms.dataset", "production")
	v.SetDefault("cms.api_version", "2024-02-02")
	v.SetDefault("cms.use_cdn", true)
	v.SetDefault("cms.base_url", "")
	v.SetDefault("cms.token", "")
	v.SetDefault("cms.timeout", 30)
	v.SetDefault("cms.max_retries", 3)
	v.SetDefault("cms.max_requests_per_second", 10)
	v.SetDefault("cms.webhook_secret", "")

	v.SetDefault("catalog.page_size", 9)
	v.SetDefault("catalog.refresh_interval", 60)
	v.SetDefault("catalog.related_limit", 4)
	v.SetDefault("catalog.workers", 2)

	v.SetDefault("compare.storage_key", "compare-storage:v1")
	v.SetDefault("compare.session_ttl", 24*30)
	v.SetDefault("compare.cookie_name", "compare_session")
	v.SetDefault("compare.cache_size", 10000)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "radiolink")
	v.SetDefault("database.user", "radiolink_user")
	v.SetDefault("database.password", "radiolink_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "radiolink_consumer")
	v.SetDefault("redis.min_idle_time", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
