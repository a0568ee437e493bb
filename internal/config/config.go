// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all taigaterm configuration.
type Config struct {
	API     API     `yaml:"api"`
	Log     Log     `yaml:"log"`
	Session Session `yaml:"session"`
}

// API holds Taiga server settings.
type API struct {
	Host      string        `yaml:"host"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // Requests per second, 0 disables limiting
	Burst     int           `yaml:"burst"`
}

// Log holds log file settings. The terminal belongs to the UI, so logs
// only ever go to a file.
type Log struct {
	File  string `yaml:"file"`  // Empty means <user cache dir>/taigaterm/taigaterm.log
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// Session holds login persistence settings.
type Session struct {
	Remember bool   `yaml:"remember"`
	Path     string `yaml:"path"` // Empty means <user config dir>/taigaterm/session.yaml
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: API{
			Host:      "https://api.taiga.io",
			Timeout:   30 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		Log: Log{
			Level: "info",
		},
		Session: Session{
			Remember: true,
		},
	}
}

// Paths returns the config files read by default, lowest priority first:
// the user config and the working-directory override.
func Paths() []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "taigaterm", "config.yaml"))
	}
	return append(paths, ".taigaterm.yaml")
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.API.Host == "" {
		return errors.New("config: api.host cannot be empty")
	}
	if !strings.HasPrefix(c.API.Host, "http://") && !strings.HasPrefix(c.API.Host, "https://") {
		return fmt.Errorf("config: api.host must start with http:// or https://, got %q", c.API.Host)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %v", c.API.Timeout)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("config: api.rate_limit must be non-negative, got %v", c.API.RateLimit)
	}
	if c.API.Burst < 0 {
		return fmt.Errorf("config: api.burst must be non-negative, got %d", c.API.Burst)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log.level value to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: log.level must be one of debug, info, warn, error; got %q", s)
	}
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: TAIGATERM_HOST, TAIGATERM_TIMEOUT, TAIGATERM_RATE_LIMIT,
// TAIGATERM_LOG_FILE, TAIGATERM_LOG_LEVEL, TAIGATERM_SESSION_PATH.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("TAIGATERM_HOST"); v != "" {
		c.API.Host = v
	}
	if v := os.Getenv("TAIGATERM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid TAIGATERM_TIMEOUT %q: %w", v, err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("TAIGATERM_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: invalid TAIGATERM_RATE_LIMIT %q: %w", v, err)
		}
		c.API.RateLimit = f
	}
	if v := os.Getenv("TAIGATERM_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("TAIGATERM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TAIGATERM_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}
	return nil
}

// LogFile returns the log file path, resolving the default location.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("config: locating log directory: %w", err)
	}
	return filepath.Join(dir, "taigaterm", "taigaterm.log"), nil
}

// SessionPath returns the session file path, resolving the default location.
func (c *Config) SessionPath() (string, error) {
	if c.Session.Path != "" {
		return c.Session.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locating session directory: %w", err)
	}
	return filepath.Join(dir, "taigaterm", "session.yaml"), nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	API     *rawAPI     `yaml:"api"`
	Log     *rawLog     `yaml:"log"`
	Session *rawSession `yaml:"session"`
}

type rawAPI struct {
	Host      *string        `yaml:"host"`
	Timeout   *time.Duration `yaml:"timeout"`
	RateLimit *float64       `yaml:"rate_limit"`
	Burst     *int           `yaml:"burst"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

type rawSession struct {
	Remember *bool   `yaml:"remember"`
	Path     *string `yaml:"path"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.API != nil {
		if layer.API.Host != nil {
			c.API.Host = *layer.API.Host
		}
		if layer.API.Timeout != nil {
			c.API.Timeout = *layer.API.Timeout
		}
		if layer.API.RateLimit != nil {
			c.API.RateLimit = *layer.API.RateLimit
		}
		if layer.API.Burst != nil {
			c.API.Burst = *layer.API.Burst
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
	if layer.Session != nil {
		if layer.Session.Remember != nil {
			c.Session.Remember = *layer.Session.Remember
		}
		if layer.Session.Path != nil {
			c.Session.Path = *layer.Session.Path
		}
	}
}
