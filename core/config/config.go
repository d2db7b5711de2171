package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Source   SourceConfig   `mapstructure:"source"`
	Poll     PollConfig     `mapstructure:"poll"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	BaseURL  string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"name"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	CacheDB  int    `mapstructure:"cache_db"`
	QueueDB  int    `mapstructure:"queue_db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// SourceConfig configures the remote availability API.
type SourceConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
	CacheBackend string        `mapstructure:"cache_backend"` // redis, memory or none
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheSize    int           `mapstructure:"cache_size"`
	Concurrency  int           `mapstructure:"concurrency"`
}

type PollConfig struct {
	DefaultMinimumLength  string `mapstructure:"default_minimum_length"` // HH:MM
	DefaultWeeks          int    `mapstructure:"default_weeks"`
	DisplayUTCOffsetHours int    `mapstructure:"display_utc_offset_hours"`
	MaxSessions           int    `mapstructure:"max_sessions"`
}

type WorkerConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	Queue       string `mapstructure:"queue"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "polls")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.cache_db", 0)
	v.SetDefault("redis.queue_db", 1)

	v.SetDefault("jwt.secret", "")

	v.SetDefault("source.base_url", "https://api.dispos.pocot.fr")
	v.SetDefault("source.timeout", 10*time.Second)
	v.SetDefault("source.retry_count", 2)
	v.SetDefault("source.cache_backend", "memory")
	v.SetDefault("source.cache_ttl", time.Minute)
	v.SetDefault("source.cache_size", 1024)
	v.SetDefault("source.concurrency", 8)

	v.SetDefault("poll.default_minimum_length", "02:00")
	v.SetDefault("poll.default_weeks", 1)
	v.SetDefault("poll.display_utc_offset_hours", 2)
	v.SetDefault("poll.max_sessions", 5)

	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.queue", "default")
}

// Load reads .env, the optional config file at path and the environment.
// Environment variables use the upper-cased key with dots replaced by
// underscores, e.g. SOURCE_BASE_URL.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Poll.DefaultWeeks <= 0 {
		return fmt.Errorf("poll.default_weeks must be strictly positive, got %d", c.Poll.DefaultWeeks)
	}
	if c.Poll.MaxSessions < 1 {
		return fmt.Errorf("poll.max_sessions must be at least 1, got %d", c.Poll.MaxSessions)
	}
	if c.Source.Concurrency <= 0 {
		return fmt.Errorf("source.concurrency must be strictly positive, got %d", c.Source.Concurrency)
	}
	switch c.Source.CacheBackend {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("source.cache_backend must be redis, memory or none, got %q", c.Source.CacheBackend)
	}
	return nil
}

// Init loads the configuration and installs it as the process-wide instance.
func Init(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	Set(cfg)
	return cfg, nil
}

func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// Get returns the process-wide configuration. It panics before Init.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Init")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// IsProduction reports whether the server runs with env=production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
