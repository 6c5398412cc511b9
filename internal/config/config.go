package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Mongo  MongoConfig  `yaml:"mongo" mapstructure:"mongo"`
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Build  BuildConfig  `yaml:"build" mapstructure:"build"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// MongoConfig configures the document store holding the source and target
// collections.
type MongoConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	Database string `yaml:"database" mapstructure:"database"`
}

// SourceConfig configures where the normalized source tables are imported
// from.
type SourceConfig struct {
	PostgresURL string `yaml:"postgres_url" mapstructure:"postgres_url"`
	TablePrefix string `yaml:"table_prefix" mapstructure:"table_prefix"`
}

// BuildConfig tunes the remodeling pipeline.
type BuildConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
	BatchSize  int `yaml:"batch_size" mapstructure:"batch_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("remodel")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.remodel")

	// Environment
	v.SetEnvPrefix("REMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "storelake")
	v.SetDefault("source.table_prefix", "src_")
	v.SetDefault("build.window_days", 30)
	v.SetDefault("build.batch_size", 1000)
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
