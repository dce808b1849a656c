// Package config loads tablestore CLI settings from defaults, an optional
// YAML file and TABLESTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "TABLESTORE"

// Configuration keys
const (
	KeyDatabasePath  = "database.path"
	KeyDatabaseTable = "database.table"
	KeyLogLevel      = "log.level"
)

// Default values
const (
	DefaultDatabasePath = "tablestore.db"
	DefaultTableName    = "my_table"
	DefaultLogLevel     = "info"
)

// Config holds the resolved settings
type Config struct {
	DatabasePath string
	TableName    string
	LogLevel     string
}

// Load resolves the configuration. When configFile is empty, tablestore.yaml
// in the working directory is read if it exists. Environment variables
// override the file: TABLESTORE_DATABASE_PATH, TABLESTORE_DATABASE_TABLE and
// TABLESTORE_LOG_LEVEL.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyDatabaseTable, DefaultTableName)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("tablestore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return &Config{
		DatabasePath: v.GetString(KeyDatabasePath),
		TableName:    v.GetString(KeyDatabaseTable),
		LogLevel:     v.GetString(KeyLogLevel),
	}, nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
