// Package config handles the XDG configuration directory, the optional
// config file and derived paths.
package config

import (
	"os"
	"path/filepath"

	"todo/internal/logging"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional settings file inside Dir.
	ConfigFile = "config.yaml"

	// StoreDir is the default store directory name inside Dir.
	StoreDir = "store"

	// DefaultSchemaVersion is the store schema version used when the
	// config file does not set one.
	DefaultSchemaVersion = 1
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// StorePath is the directory holding the task store.
	StorePath string

	// SchemaVersion is the expected store schema version.
	// Changing it drops all stored tasks on next open.
	SchemaVersion int

	// LogLevel is the minimum level logged to stderr.
	LogLevel string
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// Settings from config.yaml in that directory are applied when present.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:           dir,
		StorePath:     filepath.Join(dir, StoreDir),
		SchemaVersion: DefaultSchemaVersion,
		LogLevel:      logging.DefaultLevel,
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to the optional config file.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// HasFile checks if the config file exists.
func (c *Config) HasFile() bool {
	_, err := os.Stat(c.FilePath())
	return err == nil
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Level returns the effective log level, honouring Debug.
func (c *Config) Level() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
