// Package config loads and saves the engine configuration: a single TOML
// file composing the per-package sections, created with defaults on first
// run so operators always have a file to edit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/stillpoint/nebula/pkg/audio"
	"github.com/stillpoint/nebula/pkg/capture"
	"github.com/stillpoint/nebula/pkg/galaxy"
	"github.com/stillpoint/nebula/pkg/insight"
	"github.com/stillpoint/nebula/pkg/landmark"
	"github.com/stillpoint/nebula/pkg/motion"
	"github.com/stillpoint/nebula/pkg/session"
	"github.com/stillpoint/nebula/pkg/web"
)

// DefaultPath is where the engine looks for its configuration.
const DefaultPath = "nebula.toml"

// Config is the whole engine configuration.
type Config struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	Web      web.Config            `toml:"web"`
	Capture  capture.Config        `toml:"capture"`
	Landmark landmark.Config       `toml:"landmark"`
	Motion   motion.Config         `toml:"motion"`
	Audio    audio.Config          `toml:"audio"`
	Galaxy   galaxy.Params         `toml:"galaxy"`
	Animator galaxy.AnimatorConfig `toml:"animator"`
	Session  session.Config        `toml:"session"`
	Insight  insight.Config        `toml:"insight"`
}

// DefaultConfig composes every section's defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Web:      web.DefaultConfig(),
		Capture:  capture.DefaultConfig(),
		Landmark: landmark.DefaultConfig(),
		Motion:   motion.DefaultConfig(),
		Audio:    audio.DefaultConfig(),
		Galaxy:   galaxy.DefaultParams(),
		Animator: galaxy.DefaultAnimatorConfig(),
		Session:  session.DefaultConfig(),
		Insight:  insight.DefaultConfig(),
	}
}

// Load reads the TOML file at path. A missing file is not an error: the
// defaults are written there and returned, so the first run leaves an
// editable file behind.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks every section that has constraints.
func (c *Config) Validate() error {
	if err := c.Motion.Validate(); err != nil {
		return fmt.Errorf("motion: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	if err := c.Galaxy.Validate(); err != nil {
		return err
	}
	return nil
}
