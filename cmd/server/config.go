/*
config.go - Server configuration via viper

PURPOSE:
  Loads configuration from (in precedence order) environment variables
  (TIMEWALLET_*), an optional timewallet.yaml in the working directory,
  and built-in defaults.

KEYS:
  addr                  Listen address           (default :8080)
  db                    SQLite database path     (default timewallet.db)
  daily_limit           Default total cap, min   (default 60)
  rollover_interval     Day-rollover check tick  (default 60s)
  native_interval       Native refresh tick      (default 5s)
  log_level             zerolog level            (default info)
*/
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the server configuration.
type Config struct {
	Addr             string
	DBPath           string
	DailyLimit       int
	RolloverInterval time.Duration
	NativeInterval   time.Duration
	LogLevel         string
}

// LoadConfig reads configuration from env and optional config file.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("db", "timewallet.db")
	v.SetDefault("daily_limit", 60)
	v.SetDefault("rollover_interval", "60s")
	v.SetDefault("native_interval", "5s")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("TIMEWALLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("timewallet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Addr:             v.GetString("addr"),
		DBPath:           v.GetString("db"),
		DailyLimit:       v.GetInt("daily_limit"),
		RolloverInterval: v.GetDuration("rollover_interval"),
		NativeInterval:   v.GetDuration("native_interval"),
		LogLevel:         v.GetString("log_level"),
	}
	if cfg.DailyLimit <= 0 {
		return Config{}, fmt.Errorf("daily_limit must be positive, got %d", cfg.DailyLimit)
	}
	if cfg.RolloverInterval <= 0 || cfg.NativeInterval <= 0 {
		return Config{}, fmt.Errorf("poll intervals must be positive")
	}
	return cfg, nil
}
