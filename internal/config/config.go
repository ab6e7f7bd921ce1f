// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GatewayConfig describes the WAHA instance the poller talks to.
type GatewayConfig struct {
	BaseURL        string               `mapstructure:"base_url"`
	APIKey         string               `mapstructure:"api_key"`
	Timeout        int                  `mapstructure:"timeout"`
	RateLimit      float64              `mapstructure:"rate_limit"`
	RateLimitBurst int                  `mapstructure:"rate_limit_burst"`
	StatusCacheTTL int                  `mapstructure:"status_cache_ttl"`
	WebhookToken   string               `mapstructure:"webhook_token"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`
	Timeout          int     `mapstructure:"timeout"`
	FailureRatio     float64 `mapstructure:"failure_ratio"`
	ConsecutiveFails uint32  `mapstructure:"consecutive_fails"`
}

type SyncConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	IntervalSeconds    int  `mapstructure:"interval_seconds"`
	MessageLimit       int  `mapstructure:"message_limit"`
	PassTimeoutSeconds int  `mapstructure:"pass_timeout_seconds"`
	SeenCacheTTL       int  `mapstructure:"seen_cache_ttl"`
}

type NotifyConfig struct {
	EventName    string `mapstructure:"event_name"`
	WebSocket    bool   `mapstructure:"websocket"`
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	RedisChannel string `mapstructure:"redis_channel"`
}

type MiddlewareConfig struct {
	RateLimit      int      `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	RequestTimeout int      `mapstructure:"request_timeout"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables still win.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// AutomaticEnv only resolves keys viper already knows, so secrets and
	// hosts that usually come from the environment get empty defaults.
	for _, key := range []string{
		"database.host",
		"database.user",
		"database.password",
		"database.dbname",
		"redis.host",
		"redis.password",
		"gateway.base_url",
		"gateway.api_key",
		"gateway.webhook_token",
		"notify.amqp_url",
		"notify.redis_channel",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.migrations_path", "./migrations")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateway.timeout", 30)
	v.SetDefault("gateway.rate_limit", 20)
	v.SetDefault("gateway.rate_limit_burst", 40)
	v.SetDefault("gateway.status_cache_ttl", 10)
	v.SetDefault("gateway.circuit_breaker.max_requests", 3)
	v.SetDefault("gateway.circuit_breaker.interval", 60)
	v.SetDefault("gateway.circuit_breaker.timeout", 30)
	v.SetDefault("gateway.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("gateway.circuit_breaker.consecutive_fails", 5)
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.interval_seconds", 5)
	v.SetDefault("sync.message_limit", 20)
	v.SetDefault("sync.pass_timeout_seconds", 0)
	v.SetDefault("sync.seen_cache_ttl", 86400)
	v.SetDefault("notify.event_name", "chat:new-message")
	v.SetDefault("notify.websocket", true)
	v.SetDefault("notify.amqp_exchange", "chat.events")
	v.SetDefault("middleware.rate_limit", 100)
	v.SetDefault("middleware.rate_limit_burst", 1000)
	v.SetDefault("middleware.request_timeout", 30)
	v.SetDefault("middleware.enable_cors", true)
	v.SetDefault("middleware.allowed_origins", []string{"*"})
}

// Validate rejects settings the poller cannot run with.
func (c *Config) Validate() error {
	if c.Sync.IntervalSeconds <= 0 {
		return fmt.Errorf("sync.interval_seconds must be positive, got %d", c.Sync.IntervalSeconds)
	}
	if c.Sync.MessageLimit <= 0 {
		return fmt.Errorf("sync.message_limit must be positive, got %d", c.Sync.MessageLimit)
	}
	if c.Sync.Enabled && c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required when sync is enabled")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GetURL returns the PostgreSQL URL form expected by golang-migrate.
func (d *DatabaseConfig) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// Addr returns host:port for the Redis client.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (s *SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

func (s *SyncConfig) PassTimeout() time.Duration {
	return time.Duration(s.PassTimeoutSeconds) * time.Second
}

func (s *SyncConfig) SeenTTL() time.Duration {
	return time.Duration(s.SeenCacheTTL) * time.Second
}

func (g *GatewayConfig) RequestTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

func (g *GatewayConfig) StatusTTL() time.Duration {
	return time.Duration(g.StatusCacheTTL) * time.Second
}
