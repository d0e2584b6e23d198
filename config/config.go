// Package config loads the tracker configuration file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"roitracker/types"
)

// maxFileSize bounds the configuration file read into memory
const maxFileSize = 1 << 20

// Config is the root of the configuration file
type Config struct {
	Session types.SessionConfig `yaml:"session"`
	Video   types.VideoConfig   `yaml:"video"`
	UI      types.UIConfig      `yaml:"ui"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Session: types.DefaultSessionConfig(),
		Video:   types.DefaultVideoConfig(),
		UI:      types.DefaultUIConfig(),
	}
}

// Validate checks every section, filling in defaults where a value is unusable
func (c *Config) Validate() error {
	if err := c.Session.Validate(); err != nil {
		return errors.Wrap(err, "session")
	}
	if err := c.Video.Validate(); err != nil {
		return errors.Wrap(err, "video")
	}
	if err := c.UI.Validate(); err != nil {
		return errors.Wrap(err, "ui")
	}
	return nil
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their defaults. An empty path or a missing file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	clean := filepath.Clean(path)
	switch ext := filepath.Ext(clean); ext {
	case ".yaml", ".yml":
	default:
		return cfg, errors.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(clean)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "stat config file")
	}
	if info.Size() > maxFileSize {
		return cfg, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return cfg, errors.Wrap(err, "read config file")
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", clean)
	}
	return cfg, nil
}

// Decode parses YAML into cfg and validates the result. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}
