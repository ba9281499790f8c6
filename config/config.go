// Package config loads raventerm's TOML settings file, layering
// on-disk overrides over §4.8's defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultScrollbackSize matches core.ScrollbackSize (§3); kept as its
// own constant so config stays independent of the core package.
const DefaultScrollbackSize = 1000

// DefaultTermType is reported to the shell via $TERM (§4.8).
const DefaultTermType = "xterm-256color"

// DefaultMouseScrollLines is how many rows Shift+Up/Down scrolls the
// viewport per press when the file doesn't override it.
const DefaultMouseScrollLines = 3

// Config holds the terminal's layered settings (§4.8).
type Config struct {
	Shell            string `toml:"shell"`
	TermType         string `toml:"term_type"`
	ScrollbackSize   int    `toml:"scrollback_size"`
	Theme            string `toml:"theme"`
	MouseScrollLines int    `toml:"mouse_scroll_lines"`
}

// Default returns the built-in defaults, used both as a starting point
// before a file is decoded onto it and as the whole config when no
// file exists.
func Default() *Config {
	return &Config{
		Shell:            "",
		TermType:         DefaultTermType,
		ScrollbackSize:   DefaultScrollbackSize,
		Theme:            "raven-blue",
		MouseScrollLines: DefaultMouseScrollLines,
	}
}

// Path returns the config file location, creating its parent
// directory if needed (grounded on teacher's GetConfigPath).
func Path() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".raventerm.toml"
	}
	dir := filepath.Join(homeDir, ".config", "raventerm")
	os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "config.toml")
}

// Load decodes the TOML file at path onto the defaults, so a partial
// file only overrides the fields it sets. A missing file yields the
// defaults unchanged (§4.8, §7: config errors never abort startup
// except a malformed file, which is reported to the caller).
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.ScrollbackSize <= 0 {
		cfg.ScrollbackSize = DefaultScrollbackSize
	}
	if cfg.TermType == "" {
		cfg.TermType = DefaultTermType
	}
	return cfg, nil
}

// Save writes the config back to path in TOML form.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
