// Package config loads application settings from defaults, an optional
// config file and ISITFROZEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ngmaloney/isitfrozen/internal/database"
	"github.com/ngmaloney/isitfrozen/internal/geocoding"
)

// Config holds application settings
type Config struct {
	APIBaseURL      string
	ZipcodeURL      string
	UserAgent       string
	DBPath          string
	LogLevel        string
	LogFile         string
	LogFormat       string
	HTTPTimeout     time.Duration
	ObservationDays int
	TickInterval    time.Duration
}

// Load reads configuration. configFile may be empty, in which case a .env file
// in the working directory is used if one exists.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("API_BASE_URL", "https://api.weather.gov")
	v.SetDefault("ZIPCODE_URL", geocoding.DefaultZipcodeURL)
	v.SetDefault("USER_AGENT", "IsItFrozen/1.0 (github.com/ngmaloney/isitfrozen)")
	v.SetDefault("DB_PATH", database.DBPath())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", filepath.Join("data", "isitfrozen.log"))
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)
	v.SetDefault("OBSERVATION_DAYS", 5)
	v.SetDefault("TICK_INTERVAL", 500*time.Millisecond)

	v.SetEnvPrefix("ISITFROZEN")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{
		APIBaseURL:      v.GetString("API_BASE_URL"),
		ZipcodeURL:      v.GetString("ZIPCODE_URL"),
		UserAgent:       v.GetString("USER_AGENT"),
		DBPath:          v.GetString("DB_PATH"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFile:         v.GetString("LOG_FILE"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		HTTPTimeout:     v.GetDuration("HTTP_TIMEOUT"),
		ObservationDays: v.GetInt("OBSERVATION_DAYS"),
		TickInterval:    v.GetDuration("TICK_INTERVAL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if c.ObservationDays <= 0 {
		return errors.New("OBSERVATION_DAYS must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	return nil
}
