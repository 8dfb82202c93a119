// Package pipeline provides the load → layout → render pipeline for
// stackflame.
//
// This package is shared by the CLI and the HTTP server, so both apply the
// same defaults, cache keys and rendering.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a profile (folded stacks or JSON tree) into a call tree
//  2. Layout: Flatten the tree into a frame model and build a render engine
//  3. Render: Paint the engine into one or more formats (PNG, SVG, JSON,
//     text, minimap, call-tree SVG)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "cpu.folded",
//	    Formats: []string{"svg", "png"},
//	    Width:   1600,
//	})
//	svg := result.Artifacts["svg"]
//
// Formats render concurrently, each on its own engine. Rendered artifacts
// are cached by profile content hash and render options.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflame/pkg/cache"
	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/fonts"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default image width in pixels.
	DefaultWidth = 1200

	// DefaultMinimapWidth is the default minimap width in pixels.
	DefaultMinimapWidth = flame.DefaultMinimapWidth

	// DefaultTextPadding is the default label padding in pixels.
	DefaultTextPadding = flame.DefaultTextPadding

	// DefaultFontSize is the default label size in points.
	DefaultFontSize = fonts.DefaultSize

	// DefaultDotDepth bounds the call-tree export.
	DefaultDotDepth = 12

	// MaxWidth bounds render widths accepted from clients.
	MaxWidth = 16384
)

// DefaultPalette is the default frame palette.
const DefaultPalette = colors.DefaultPalette

// Format constants for output formats.
const (
	FormatPNG     = "png"
	FormatSVG     = "svg"
	FormatJSON    = "json"
	FormatText    = "txt"
	FormatMinimap = "minimap"
	FormatDOT     = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:     true,
	FormatSVG:     true,
	FormatJSON:    true,
	FormatText:    true,
	FormatMinimap: true,
	FormatDOT:     true,
}

// Extension returns the file extension of a rendered format.
func Extension(format string) string {
	switch format {
	case FormatMinimap:
		return ".minimap.png"
	case FormatDOT:
		return ".tree.svg"
	}
	return "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// ColorPair is a light/dark color override in "#rrggbb" or "#rrggbbaa".
// An empty Dark reuses Light.
type ColorPair struct {
	Light string `json:"light,omitempty" toml:"light"`
	Dark  string `json:"dark,omitempty" toml:"dark"`
}

// IsZero reports whether no override is set.
func (p ColorPair) IsZero() bool { return p.Light == "" && p.Dark == "" }

// Pair parses the override.
func (p ColorPair) Pair() (colors.Pair, error) {
	light, err := colors.ParseHex(p.Light)
	if err != nil {
		return colors.Pair{}, err
	}
	if p.Dark == "" {
		return colors.Same(light), nil
	}
	dark, err := colors.ParseHex(p.Dark)
	if err != nil {
		return colors.Pair{}, err
	}
	return colors.Pair{Light: light, Dark: dark}, nil
}

// ColorOverrides replaces the decoration colors of the frame renderer.
type ColorOverrides struct {
	Root       ColorPair `json:"root,omitzero" toml:"root"`
	DimmedText ColorPair `json:"dimmed_text,omitzero" toml:"dimmed_text"`
	Hovered    ColorPair `json:"hovered,omitzero" toml:"hovered"`
	Border     ColorPair `json:"border,omitzero" toml:"border"`
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	Path     string         `json:"path,omitempty"`
	Data     []byte         `json:"-"`
	Format   profile.Format `json:"format,omitempty"`
	Title    string         `json:"title,omitempty"`
	Sort     bool           `json:"sort,omitempty"`
	ShowSelf bool           `json:"show_self,omitempty"`

	// Layout options
	Width          int            `json:"width,omitempty"`
	Flame          bool           `json:"flame,omitempty"`
	Theme          string         `json:"theme,omitempty"`
	Palette        string         `json:"palette,omitempty"`
	ColorMode      string         `json:"color_mode,omitempty"`
	NoGaps         bool           `json:"no_gaps,omitempty"`
	TextPadding    int            `json:"text_padding,omitempty"`
	FontSize       float64        `json:"font_size,omitempty"`
	Colors         ColorOverrides `json:"colors,omitzero"`
	Search         string         `json:"search,omitempty"`
	HideSiblings   bool           `json:"hide_siblings,omitempty"`
	MinimapWidth   int            `json:"minimap_width,omitempty"`
	DotDepth       int            `json:"dot_depth,omitempty"`
	DotMinWidth    float64        `json:"dot_min_width,omitempty"`
	EmbedFont      bool           `json:"embed_font,omitempty"`
	Formats        []string       `json:"formats,omitempty"`
	BlendingColors bool           `json:"blending_colors,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger `json:"-"`
	NoCache bool        `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Profile is the loaded call tree.
	Profile *profile.Node

	// ProfileHash is the content hash of the profile input.
	ProfileHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	FrameCount int
	Depth      int
	Matches    int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the call tree came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, json, txt, minimap, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePalette checks that a palette exists.
func ValidatePalette(name string) error {
	_, err := colors.LookupPalette(name)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that there is a profile to read.
func (o *Options) ValidateForLoad() error {
	if o.Path == "" && len(o.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "profile path or data is required")
	}
	if o.Path != "" {
		if err := errors.ValidatePath(o.Path); err != nil {
			return err
		}
	}
	if o.Title == "" && o.Path != "" {
		o.Title = profile.Title(o.Path)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Theme == "" {
		o.Theme = colors.Light.String()
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.ColorMode == "" {
		o.ColorMode = string(profile.ByPackage)
	}
	if o.TextPadding == 0 {
		o.TextPadding = DefaultTextPadding
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.MinimapWidth == 0 {
		o.MinimapWidth = DefaultMinimapWidth
	}
	if o.DotDepth == 0 {
		o.DotDepth = DefaultDotDepth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 1 || o.Width > MaxWidth || o.MinimapWidth < 1 || o.MinimapWidth > MaxWidth {
		return errors.New(errors.ErrCodeInvalidInput, "width must be between 1 and %d", MaxWidth)
	}
	if _, err := colors.ParseTheme(o.Theme); err != nil {
		return err
	}
	if err := ValidatePalette(o.Palette); err != nil {
		return err
	}
	if _, err := profile.ParseColorMode(o.ColorMode); err != nil {
		return err
	}
	for _, p := range []ColorPair{o.Colors.Root, o.Colors.DimmedText, o.Colors.Hovered, o.Colors.Border} {
		if p.IsZero() {
			continue
		}
		if _, err := p.Pair(); err != nil {
			return err
		}
	}
	return nil
}

// ThemeValue returns the parsed theme.
func (o *Options) ThemeValue() colors.Theme {
	t, _ := colors.ParseTheme(o.Theme)
	return t
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Flame:       o.Flame,
		Theme:       o.Theme,
		Palette:     o.Palette,
		ColorMode:   o.ColorMode,
		Search:      o.Search,
		Gaps:        !o.NoGaps,
		ShowSelf:    o.ShowSelf,
		TextPadding: o.TextPadding,
	}
	switch format {
	case FormatMinimap:
		k.Width = o.MinimapWidth
	case FormatDOT:
		k.MaxDepth, k.MinWidth = o.DotDepth, o.DotMinWidth
	case FormatSVG:
		k.EmbedFont = o.EmbedFont
	}
	k.FontSize = o.FontSize
	k.Colors = o.Colors.key()
	k.Blending = o.BlendingColors
	return k
}

func (c ColorOverrides) key() string {
	if c == (ColorOverrides{}) {
		return ""
	}
	return c.Root.Light + c.Root.Dark + "|" + c.DimmedText.Light + c.DimmedText.Dark + "|" +
		c.Hovered.Light + c.Hovered.Dark + "|" + c.Border.Light + c.Border.Dark
}
