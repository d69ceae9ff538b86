package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ponyclubs/clubsync/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Matcher MatcherConfig `yaml:"matcher" mapstructure:"matcher"`
	Apply   ApplyConfig   `yaml:"apply" mapstructure:"apply"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the club-registry backend.
type StoreConfig struct {
	Driver string            `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DSN    string            `yaml:"dsn" mapstructure:"dsn"`
	Pool   *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int `yaml:"port" mapstructure:"port"`
	SessionTTLSecs int `yaml:"session_ttl_secs" mapstructure:"session_ttl_secs"`
	LogPollMillis  int `yaml:"log_poll_millis" mapstructure:"log_poll_millis"`
}

// MatcherConfig configures fuzzy matching behavior.
type MatcherConfig struct {
	ExactThreshold  float64 `yaml:"exact_threshold" mapstructure:"exact_threshold"`
	HighThreshold   float64 `yaml:"high_threshold" mapstructure:"high_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold" mapstructure:"medium_threshold"`
	LowThreshold    float64 `yaml:"low_threshold" mapstructure:"low_threshold"`
	NoisePhrase     string  `yaml:"noise_phrase" mapstructure:"noise_phrase"`
	Parallelism     int     `yaml:"parallelism" mapstructure:"parallelism"`
}

// ApplyConfig configures apply-mode update throttling.
type ApplyConfig struct {
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"` // 0 disables throttling
	Burst      int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CLUBSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "clubsync.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.session_ttl_secs", 120)
	v.SetDefault("server.log_poll_millis", 500)
	v.SetDefault("matcher.exact_threshold", 0.90)
	v.SetDefault("matcher.high_threshold", 0.80)
	v.SetDefault("matcher.medium_threshold", 0.60)
	v.SetDefault("matcher.low_threshold", 0.40)
	v.SetDefault("matcher.noise_phrase", "pony club")
	v.SetDefault("matcher.parallelism", 0)
	v.SetDefault("apply.rate_per_sec", 0)
	v.SetDefault("apply.burst", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
