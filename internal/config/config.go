// Package config loads editor settings from a TOML file and watches
// it for changes so edits to the file apply without a restart.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full editor configuration.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	Font   FontConfig   `toml:"font"`
	Theme  ThemeConfig  `toml:"theme"`
}

// EditorConfig holds buffer and input behavior.
type EditorConfig struct {
	// TabWidth is the tab stop distance in columns.
	TabWidth int `toml:"tab_width"`

	// LineEnding selects the save-time line ending: "lf", "crlf",
	// "cr", or "auto" to keep what was detected on load.
	LineEnding string `toml:"line_ending"`
}

// FontConfig holds the initial caret format.
type FontConfig struct {
	Family string  `toml:"family"`
	Size   float64 `toml:"size"`
	Bold   bool    `toml:"bold"`
	Italic bool    `toml:"italic"`
}

// ThemeConfig holds colors as hex strings.
type ThemeConfig struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Selection  string `toml:"selection"`
	Caret      string `toml:"caret"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			TabWidth:   4,
			LineEnding: "auto",
		},
		Font: FontConfig{
			Family: "monospace",
			Size:   11,
		},
		Theme: ThemeConfig{
			Foreground: "#cdd6f4",
			Background: "#1e1e2e",
		},
	}
}

// Load reads a config file, applying defaults for anything the file
// leaves unset. A missing file is not an error and yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("editor.tab_width %d out of range 1..16", c.Editor.TabWidth)
	}
	switch c.Editor.LineEnding {
	case "lf", "crlf", "cr", "auto":
	default:
		return fmt.Errorf("editor.line_ending %q must be lf, crlf, cr or auto", c.Editor.LineEnding)
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("font.size %v must be positive", c.Font.Size)
	}
	return nil
}
