// Package config loads the CLI configuration file wayfind.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/wayfind-dev/wayfind/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "wayfind.json"

	// DefaultAddr is the default serve address.
	DefaultAddr = "localhost:8080"
)

// Config is the wayfind.json configuration. Everything in it can also
// be given as a command-line flag; flags win.
type Config struct {
	// Routes lists the route files, in load order.
	Routes []string `json:"routes,omitempty"`

	// Addr is the address the serve command binds to.
	Addr string `json:"addr,omitempty"`

	// Metrics enables the /metrics endpoint of the serve command.
	Metrics bool `json:"metrics,omitempty"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Addr:     DefaultAddr,
		Metrics:  true,
		LogLevel: "info",
	}
}

// Load reads wayfind.json from the given directory. A missing file is
// not an error: the defaults are returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.Newf(errors.CategoryCLI, "cannot read %s", path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "%s is not valid JSON", path).
			Wrap(err).
			WithSuggestion("check the file for trailing commas or unquoted keys")
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Path returns where the config was loaded from, "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
