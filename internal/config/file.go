package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	kconfig "github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"

	"todo/internal/logging"
)

// ErrInvalidFile indicates config.yaml exists but cannot be used.
var ErrInvalidFile = errors.New("invalid config file")

// bootstrap mirrors config.yaml.
type bootstrap struct {
	Logging struct {
		Level string `yaml:"level" json:"level"`
	} `yaml:"logging" json:"logging"`
	Storage struct {
		Path          string `yaml:"path" json:"path"`
		SchemaVersion int    `yaml:"schema_version" json:"schema_version"`
	} `yaml:"storage" json:"storage"`
}

// loadFile applies config.yaml on top of the defaults.
// A missing file is not an error.
func (c *Config) loadFile() error {
	if !c.HasFile() {
		return nil
	}

	kc := kconfig.New(kconfig.WithSource(file.NewSource(c.FilePath())))
	defer kc.Close()

	if err := kc.Load(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFile, c.FilePath(), err)
	}

	var bc bootstrap
	if err := kc.Scan(&bc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFile, c.FilePath(), err)
	}

	if lvl := strings.TrimSpace(bc.Logging.Level); lvl != "" {
		if !logging.ValidLevel(lvl) {
			return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidFile, lvl)
		}
		c.LogLevel = strings.ToLower(lvl)
	}

	if p := strings.TrimSpace(bc.Storage.Path); p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir, p)
		}
		c.StorePath = p
	}

	switch {
	case bc.Storage.SchemaVersion < 0:
		return fmt.Errorf("%w: storage.schema_version must be positive", ErrInvalidFile)
	case bc.Storage.SchemaVersion > 0:
		c.SchemaVersion = bc.Storage.SchemaVersion
	}

	return nil
}
