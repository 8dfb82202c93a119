package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/pipeline"
)

// Config holds the optional settings file. Flags override file values and
// file values override built-in defaults.
type Config struct {
	Theme           string                  `toml:"theme"`
	Mode            string                  `toml:"mode"`
	Width           int                     `toml:"width"`
	Palette         string                  `toml:"palette"`
	ColorMode       string                  `toml:"color_mode"`
	Gaps            *bool                   `toml:"gaps"`
	HoveredSiblings *bool                   `toml:"hovered_siblings"`
	MinimapWidth    int                     `toml:"minimap_width"`
	TextPadding     int                     `toml:"text_padding"`
	FontSize        float64                 `toml:"font_size"`
	Colors          pipeline.ColorOverrides `toml:"colors"`
}

// Orientation values of the mode key.
const (
	modeIcicle = "icicle"
	modeFlame  = "flame"
)

// readConfig decodes the TOML file at path. Unknown keys are returned
// separately so they can be reported.
func readConfig(path string) (*Config, []string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("read config %s: %w", path, err)
	}
	switch cfg.Mode {
	case "", modeIcicle, modeFlame:
	default:
		return nil, nil, fmt.Errorf("config %s: invalid mode %q (must be 'icicle' or 'flame')", path, cfg.Mode)
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	return &cfg, unknown, nil
}

// loadConfig reads --config, or the default file when it exists.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		var err error
		if path, err = configFile(); err != nil {
			c.config = &Config{}
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			c.config = &Config{}
			return nil
		}
	}
	cfg, unknown, err := readConfig(path)
	if err != nil {
		return err
	}
	for _, k := range unknown {
		c.Logger.Debug("unknown config key", "key", k, "file", path)
	}
	c.Logger.Debug("loaded config", "file", path)
	c.config = cfg
	return nil
}

// applyConfig copies config values into opts for every flag the user did
// not set.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *pipeline.Options) {
	cfg := c.config
	if cfg == nil {
		return
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if cfg.Theme != "" && !changed("theme") {
		opts.Theme = cfg.Theme
	}
	if cfg.Mode != "" && !changed("flame") {
		opts.Flame = cfg.Mode == modeFlame
	}
	if cfg.Width > 0 && !changed("width") {
		opts.Width = cfg.Width
	}
	if cfg.Palette != "" && !changed("palette") {
		opts.Palette = cfg.Palette
	}
	if cfg.ColorMode != "" && !changed("color-mode") {
		opts.ColorMode = cfg.ColorMode
	}
	if cfg.Gaps != nil && !changed("no-gaps") {
		opts.NoGaps = !*cfg.Gaps
	}
	if cfg.HoveredSiblings != nil && !changed("hide-siblings") {
		opts.HideSiblings = !*cfg.HoveredSiblings
	}
	if cfg.MinimapWidth > 0 && !changed("minimap-width") {
		opts.MinimapWidth = cfg.MinimapWidth
	}
	if cfg.TextPadding > 0 && !changed("text-padding") {
		opts.TextPadding = cfg.TextPadding
	}
	if cfg.FontSize > 0 && !changed("font-size") {
		opts.FontSize = cfg.FontSize
	}

	merge := func(dst *pipeline.ColorPair, src pipeline.ColorPair) {
		if dst.IsZero() {
			*dst = src
		}
	}
	merge(&opts.Colors.Root, cfg.Colors.Root)
	merge(&opts.Colors.DimmedText, cfg.Colors.DimmedText)
	merge(&opts.Colors.Hovered, cfg.Colors.Hovered)
	merge(&opts.Colors.Border, cfg.Colors.Border)
}
