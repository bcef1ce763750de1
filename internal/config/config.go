// Package config loads the optional settings file for the todo binary.
//
// The file is YAML unless its name ends in ".toml". Values may reference
// environment variables with ${VAR_NAME}; unset variables expand to "".
//
//	data_path: "~/.todo.dat"
//	theme: "classic"   # classic, neon, mono
//	logging:
//	  level: "warn"    # debug, info, warn, error
//	  format: "text"   # text, json
//
// Fields missing from the file keep their Default() values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/tada/internal/store/cborstore"
)

// Config is the complete application configuration.
type Config struct {
	DataPath string        `yaml:"data_path" toml:"data_path"`
	Theme    string        `yaml:"theme" toml:"theme"`
	Logging  LoggingConfig `yaml:"logging" toml:"logging"`
}

// LoggingConfig controls the diagnostic logger.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

var (
	themes  = []string{"classic", "neon", "mono"}
	levels  = []string{"debug", "info", "warn", "error"}
	formats = []string{"text", "json"}
)

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataPath: cborstore.DefaultPath,
		Theme:    "classic",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the file at path on top of Default(). An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	expanded := expandEnvVars(string(data))

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} with the variable's value.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarRe.FindStringSubmatch(match)[1])
	})
}

// Validate returns the first invalid field it finds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("data_path is required")
	}
	if !oneOf(c.Theme, themes) {
		return fmt.Errorf("theme %q: want one of %s", c.Theme, strings.Join(themes, ", "))
	}
	if !oneOf(c.Logging.Level, levels) {
		return fmt.Errorf("logging.level %q: want one of %s", c.Logging.Level, strings.Join(levels, ", "))
	}
	if !oneOf(c.Logging.Format, formats) {
		return fmt.Errorf("logging.format %q: want one of %s", c.Logging.Format, strings.Join(formats, ", "))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
