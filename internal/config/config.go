// Package config loads flightdelays settings from an optional YAML file and
// FLIGHTDELAYS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cdtdelta/flightdelays/internal/database"
	"github.com/cdtdelta/flightdelays/internal/logging"
)

const (
	DefaultDriver    = database.DriverSQLite
	DefaultDSN       = "data/flights.sqlite3"
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "text"
	DefaultExportDir = "."
)

type Config struct {
	Driver    string `yaml:"driver"`
	DSN       string `yaml:"dsn"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`
	ExportDir string `yaml:"export_dir"`

	// Source is the file the settings were read from, empty if none.
	Source string `yaml:"-"`
}

// Load reads path (or $CONFIG_PATH, or ./flightdelays.yaml) when it exists,
// applies environment overrides and fills defaults. A path given explicitly
// must exist.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = "flightdelays.yaml"
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			path = envPath
			explicit = true
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.Source = path
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	envOverride(&cfg.Driver, "FLIGHTDELAYS_DRIVER")
	envOverride(&cfg.DSN, "FLIGHTDELAYS_DSN")
	envOverride(&cfg.LogLevel, "FLIGHTDELAYS_LOG_LEVEL")
	envOverride(&cfg.LogFormat, "FLIGHTDELAYS_LOG_FORMAT")
	envOverrideAllowEmpty(&cfg.LogFile, "FLIGHTDELAYS_LOG_FILE")
	envOverride(&cfg.ExportDir, "FLIGHTDELAYS_EXPORT_DIR")

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.DSN == "" && c.Driver == database.DriverSQLite {
		c.DSN = DefaultDSN
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("driver must be %q or %q, got %q", database.DriverSQLite, database.DriverPostgres, c.Driver)
	}
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("dsn is required for driver %q", c.Driver)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat, OutputPath: c.LogFile}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}
