// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "EXPENSE"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		File      string `mapstructure:"file" yaml:"file"`
		BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`
	} `mapstructure:"data" yaml:"data"`

	Reminder struct {
		IntervalSeconds int `mapstructure:"interval_seconds" yaml:"interval_seconds"`
		StopTimeoutMS   int `mapstructure:"stop_timeout_ms" yaml:"stop_timeout_ms"`
		QueueSize       int `mapstructure:"queue_size" yaml:"queue_size"`
	} `mapstructure:"reminder" yaml:"reminder"`

	Export struct {
		CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	} `mapstructure:"export" yaml:"export"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Address string `mapstructure:"address" yaml:"address"`
	} `mapstructure:"metrics" yaml:"metrics"`
}

// LoadConfig loads the configuration with hierarchical precedence: defaults, then
// the config file, then EXPENSE_* environment variables. A non-empty configFile is
// read instead of searching the default locations, and must exist.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.expense-manager")
		v.AddConfigPath(".expense-manager")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if !errors.As(err, &notFound) {
			Logger.Warnf("Error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// defaults always decode into Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Data defaults
	v.SetDefault("data.file", "data.json")
	v.SetDefault("data.backup_dir", "")

	// Reminder defaults
	v.SetDefault("reminder.interval_seconds", 10)
	v.SetDefault("reminder.stop_timeout_ms", 1000)
	v.SetDefault("reminder.queue_size", 64)

	// Export defaults
	v.SetDefault("export.csv_delimiter", ",")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Data.File) == "" {
		return fmt.Errorf("data.file must not be empty")
	}

	if len(config.Export.CSVDelimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Export.CSVDelimiter)
	}

	if config.Reminder.IntervalSeconds < 1 {
		return fmt.Errorf("reminder.interval_seconds must be at least 1, got: %d", config.Reminder.IntervalSeconds)
	}

	if config.Reminder.StopTimeoutMS < 1 {
		return fmt.Errorf("reminder.stop_timeout_ms must be positive, got: %d", config.Reminder.StopTimeoutMS)
	}

	if config.Reminder.QueueSize < 1 {
		return fmt.Errorf("reminder.queue_size must be positive, got: %d", config.Reminder.QueueSize)
	}

	return nil
}

// ReminderInterval returns the reminder poll interval.
func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.Reminder.IntervalSeconds) * time.Second
}

// ReminderStopTimeout returns how long stopping the reminder loop may take.
func (c *Config) ReminderStopTimeout() time.Duration {
	return time.Duration(c.Reminder.StopTimeoutMS) * time.Millisecond
}

// CSVDelimiter returns the export delimiter as a rune.
func (c *Config) CSVDelimiter() rune {
	return rune(c.Export.CSVDelimiter[0])
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
