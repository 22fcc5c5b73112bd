package config

import (
	"fmt"
	"time"

	"github.com/CSingh26/ReliScore/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Scorer   ScorerConfig   `mapstructure:"scorer"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"` // in minutes
}

// GetDSN builds a PostgreSQL connection string from the config.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // cache entry lifetime in seconds
}

type KafkaConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Brokers      []string `mapstructure:"brokers"`
	AuditTopic   string   `mapstructure:"audit_topic"`
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
}

type VaultConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	SecretPath string `mapstructure:"secret_path"`
	SecretKey  string `mapstructure:"secret_key"`
}

// ScorerConfig configures the remote model service client.
type ScorerConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	BearerToken  string `mapstructure:"bearer_token"`
	Timeout      int    `mapstructure:"timeout"`        // per-call timeout in seconds
	MaxAttempts  int    `mapstructure:"max_attempts"`   // retry ceiling
	BaseDelayMS  int    `mapstructure:"base_delay_ms"`  // linear backoff base
	InfoCacheTTL int    `mapstructure:"info_cache_ttl"` // model/info cache lifetime in seconds
}

// CallTimeout returns the per-call timeout as a duration.
func (c *ScorerConfig) CallTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BaseDelay returns the backoff base as a duration.
func (c *ScorerConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

// ScoringConfig configures the run orchestrator.
type ScoringConfig struct {
	LookbackDays   int `mapstructure:"lookback_days"`
	FeatureWorkers int `mapstructure:"feature_workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Scorer.BaseURL == "" {
		return errors.ErrInvalidConfig.WithMessagef("scorer.base_url is required")
	}
	if c.Scorer.MaxAttempts <= 0 {
		return errors.ErrInvalidConfig.WithMessagef("scorer.max_attempts must be positive")
	}
	if c.Scoring.LookbackDays <= 0 {
		return errors.ErrInvalidConfig.WithMessagef("scoring.lookback_days must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.ErrInvalidConfig.WithMessagef("kafka.brokers is required when kafka is enabled")
	}
	if c.Vault.Enabled && c.Vault.Address == "" {
		return errors.ErrInvalidConfig.WithMessagef("vault.address is required when vault is enabled")
	}
	return nil
}
