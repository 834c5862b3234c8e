// Package config loads spantree configuration from file, environment, and
// defaults. Field tags use mapstructure for viper unmarshalling.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".spantree"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for spantree settings.
const envPrefix = "SPANTREE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Defaults applied before file and environment overrides.
const (
	// DefaultListenAddr is the serve command's bind address.
	DefaultListenAddr = ":8080"

	// DefaultLogLevel is the minimum slog severity.
	DefaultLogLevel = "info"
)

// Config is the top-level configuration struct for spantree.
type Config struct {
	Dataset string      `mapstructure:"dataset"`
	Serve   ServeConfig `mapstructure:"serve"`
	Log     LogConfig   `mapstructure:"log"`
}

// ServeConfig holds the HTTP query server settings.
type ServeConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load reads configuration from file, env vars, and defaults. If
// configPath is non-empty, it is used as the explicit config file path;
// otherwise the config file is searched in CWD and $HOME. A missing config
// file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults registers the default value for every setting.
func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("dataset", "")
	viperCfg.SetDefault("serve.listen_addr", DefaultListenAddr)
	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.json", false)
}
