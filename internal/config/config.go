// Package config loads the single-product engine's runtime configuration,
// following the shape of the original engine's config.json (product,
// redis, kafka, log) but read through viper so it can come from a file,
// environment variables, or both.
package config

import (
	"fmt"
	"time"

	"exchangecore/internal/model"

	"github.com/spf13/viper"
)

// RedisConfig is the snapshot store's connection info.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// KafkaConfig is the order stream / event sink connection info.
type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	MessageTimeout time.Duration `mapstructure:"message_timeout"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
}

// LogConfig controls the zerolog global level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the full configuration for one running engine instance: one
// process serves exactly one product.
type Config struct {
	Product model.Product `mapstructure:"product"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Log     LogConfig     `mapstructure:"log"`
}

// Load reads configuration from path (if non-empty), lets
// MATCHING_-prefixed environment variables override the file's values,
// and returns the decoded Config. A missing config file is only an error if path was explicitly
// given.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("matching")
	v.AutomaticEnv()

	v.SetDefault("kafka.message_timeout", 5*time.Second)
	v.SetDefault("kafka.session_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Product.ID == "" {
		return nil, fmt.Errorf("config: product.id is required")
	}
	return &cfg, nil
}
