// Package config loads docvcs settings from file, environment and defaults
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nainya/docvcs/internal/logger"
)

// Setting keys
const (
	LogLevel       = "log.level"
	LogPretty      = "log.pretty"
	LogCaller      = "log.caller"
	MetricsEnabled = "metrics.enabled"
	MetricsPort    = "metrics.port"
	ShellDebug     = "shell.debug"
)

// Config is the resolved configuration of a run
type Config struct {
	Log     LogConfig
	Metrics MetricsConfig
	Shell   ShellConfig
}

type LogConfig struct {
	Level  string
	Pretty bool
	Caller bool
}

type MetricsConfig struct {
	Enabled bool
	Port    int
}

type ShellConfig struct {
	Debug bool // dump reviewed check-ins to the log
}

// Load reads configuration. path selects a config file; when empty a
// docvcs.{yaml,json,toml} in the working directory is used if present.
// Environment variables prefixed DOCVCS_ (e.g. DOCVCS_LOG_LEVEL) override both.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault(LogLevel, "warn")
	v.SetDefault(LogPretty, true)
	v.SetDefault(LogCaller, false)
	v.SetDefault(MetricsEnabled, false)
	v.SetDefault(MetricsPort, 9464)
	v.SetDefault(ShellDebug, false)

	v.SetEnvPrefix("docvcs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("docvcs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString(LogLevel)),
			Pretty: v.GetBool(LogPretty),
			Caller: v.GetBool(LogCaller),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool(MetricsEnabled),
			Port:    v.GetInt(MetricsPort),
		},
		Shell: ShellConfig{
			Debug: v.GetBool(ShellDebug),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid %s %q", LogLevel, c.Log.Level)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid %s %d", MetricsPort, c.Metrics.Port)
	}
	return nil
}
