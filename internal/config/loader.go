package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/CSingh26/ReliScore/pkg/constants"
	"github.com/CSingh26/ReliScore/pkg/errors"
)

// LoadConfig loads the configuration from file and environment variables.
// Environment variables use the RELISCORE_ prefix with underscores, e.g.
// RELISCORE_SCORER_BASE_URL overrides scorer.base_url.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "/etc/reliscore/"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInvalidConfig.Wrap(err)
		}
	}

	v.SetEnvPrefix("RELISCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInvalidConfig.Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "reliscore")
	v.SetDefault("database.database", "reliscore")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.max_conn_lifetime", 30)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.ttl", 3600)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.audit_topic", "reliscore.audit")
	v.SetDefault("kafka.write_timeout", 10)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.secret_path", "secret/data/reliscore/scorer")
	v.SetDefault("vault.secret_key", "bearer_token")

	v.SetDefault("scorer.base_url", "http://localhost:8001")
	v.SetDefault("scorer.timeout", int(constants.DefaultScorerTimeout.Seconds()))
	v.SetDefault("scorer.max_attempts", constants.DefaultScorerMaxAttempts)
	v.SetDefault("scorer.base_delay_ms", int(constants.DefaultScorerBaseDelay.Milliseconds()))
	v.SetDefault("scorer.info_cache_ttl", 300)

	v.SetDefault("scoring.lookback_days", constants.DefaultLookbackDays)
	v.SetDefault("scoring.feature_workers", 8)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "reliscore")
}
