package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for omnidal.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables override YAML values.
type Config struct {
	// Debug enables verbose logging.
	Debug bool `yaml:"debug" env:"OMNIDAL_DEBUG" env-default:"false"`

	// ShowSQL logs every executed statement. Defaults to Debug when unset.
	ShowSQL *bool `yaml:"show_sql" env:"OMNIDAL_SHOW_SQL"`

	// SQLLogPath is an optional file to append executed statements to.
	// When empty, show-SQL output goes to the process logger.
	SQLLogPath string `yaml:"sql_log_path" env:"OMNIDAL_SQL_LOG_PATH" env-default:""`

	// Connections are the named database connections available to the
	// registry at startup. Only the first entry for a given name is used.
	Connections []ConnectionConfig `yaml:"connections"`
}

// ConnectionConfig describes one named database connection.
type ConnectionConfig struct {
	// Name is the logical connection name applications ask for.
	Name string `yaml:"name"`

	// ConnectionString is the driver DSN. Secrets belong in env expansion,
	// not in checked-in YAML.
	ConnectionString string `yaml:"connection_string"`

	// Provider is an optional provider hint, matched case-insensitively
	// against the known provider markers (e.g. "sqlclient", "npgsql").
	Provider string `yaml:"provider"`

	// Dialect optionally forces a dialect, bypassing provider resolution.
	Dialect string `yaml:"dialect"`

	// DisableCache turns the per-connection result cache off.
	DisableCache bool `yaml:"disable_cache"`
}

// ShowSQLEnabled resolves the show-SQL flag, defaulting to the debug flag.
func (c *Config) ShowSQLEnabled() bool {
	if c.ShowSQL != nil {
		return *c.ShowSQL
	}
	return c.Debug
}

// Load reads configuration from the given YAML file (if it exists) and the
// environment. A missing file is not an error; env-only configuration is a
// supported deployment mode.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if err := cfg.validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for i, conn := range c.Connections {
		if conn.Name == "" {
			return fmt.Errorf("connections[%d]: name is required", i)
		}
		if conn.ConnectionString == "" {
			return fmt.Errorf("connection %q: connection_string is required", conn.Name)
		}
	}
	return nil
}
