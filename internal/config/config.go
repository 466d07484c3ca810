// Package config loads bodyecho settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/njern/bodyparse"
)

// Config holds the bodyecho configuration.
type Config struct {
	BindAddress  string        `mapstructure:"bind_address"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"` // "text" or "json"
	MetricsPath  string        `mapstructure:"metrics_path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Parser is passed to bodyparse for every request.
	Parser bodyparse.Options `mapstructure:"parser"`
}

// InitConfig points v at cfgFile, or at .bodyecho.yaml in the usual
// locations, and reads it if present.
func InitConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigType("yaml")
		v.SetConfigName(".bodyecho")
	}

	v.SetEnvPrefix("BODYECHO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

// SetDefaults registers the default values.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bind_address", "0.0.0.0:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("read_timeout", "10s")
	v.SetDefault("write_timeout", "30s")
	v.SetDefault("parser.encoding", bodyparse.DefaultEncoding)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.BindAddress == "" {
		return fmt.Errorf("bind_address must not be empty")
	}

	if c.Parser.Limit != "" {
		if _, err := bodyparse.ParseLimit(c.Parser.Limit); err != nil {
			return fmt.Errorf("parser.limit: %w", err)
		}
	}

	for kind, limit := range c.Parser.Limits {
		if _, err := bodyparse.ParseLimit(limit); err != nil {
			return fmt.Errorf("parser.limits.%s: %w", kind, err)
		}
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}

	return nil
}
