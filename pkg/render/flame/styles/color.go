package styles

import (
	"image/color"

	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

// ColorModel is the pair of colors a frame is painted with. In minimap mode
// Foreground is left zero since no text is drawn.
type ColorModel struct {
	Background color.NRGBA
	Foreground color.NRGBA
}

// ColorProvider chooses the colors of a frame. Implementations must be safe
// for concurrent use: the minimap may be painted off the interactive thread.
type ColorProvider[T any] interface {
	Colors(f *frame.Box[T], flags Flags, theme colors.Theme) ColorModel
}

// ColorFunc adapts a function to [ColorProvider].
type ColorFunc[T any] func(f *frame.Box[T], flags Flags, theme colors.Theme) ColorModel

// Colors implements [ColorProvider].
func (fn ColorFunc[T]) Colors(f *frame.Box[T], flags Flags, theme colors.Theme) ColorModel {
	return fn(f, flags, theme)
}

// BaseColor returns the undecorated background of a frame.
type BaseColor[T any] func(f *frame.Box[T]) color.NRGBA

// PaletteColor maps the key of each frame onto the palette.
func PaletteColor[T any](p colors.Palette, key func(T) string) BaseColor[T] {
	return func(f *frame.Box[T]) color.NRGBA { return p.Map(key(f.Node)) }
}

// Default decoration colors.
var (
	RootBackground   = colors.Pair{Light: colors.ARGB(0xFFEAF6FC), Dark: colors.ARGB(0xFF091222)}
	DimmedText       = colors.Pair{Light: color.NRGBA{R: 28, G: 43, B: 52, A: 173}, Dark: color.NRGBA{R: 255, G: 255, B: 255, A: 130}}
	HoveredOverlay   = colors.Pair{Light: colors.ARGB(0xFFE0C268), Dark: colors.ARGB(0xD0E0C268)}
	FrameBorder      = colors.Pair{Light: colors.RGB(0x3C3F41), Dark: colors.RGB(0xBBBBBB)}
	HighlightOverlay = colors.Pair{Light: colors.White, Dark: colors.ARGB(0xB0000000)}
)

// DimmingOption configures a [DimmingColorProvider].
type DimmingOption func(*dimmingConfig)

type dimmingConfig struct {
	root       colors.Pair
	dimmedText colors.Pair
	hovered    colors.Pair
	halfDim    bool
}

// WithRootBackground overrides the root frame background.
func WithRootBackground(p colors.Pair) DimmingOption {
	return func(c *dimmingConfig) { c.root = p }
}

// WithDimmedText overrides the text color of dimmed frames.
func WithDimmedText(p colors.Pair) DimmingOption {
	return func(c *dimmingConfig) { c.dimmedText = p }
}

// WithHoveredBackground overrides the overlay blended into hovered frames.
func WithHoveredBackground(p colors.Pair) DimmingOption {
	return func(c *dimmingConfig) { c.hovered = p }
}

// WithFocusHalfDim makes frames dimmed only because they sit outside the
// focused subtree use the half dim lightness instead of the full one.
func WithFocusHalfDim(on bool) DimmingOption {
	return func(c *dimmingConfig) { c.halfDim = on }
}

// DimmingColorProvider de-emphasizes frames outside the highlight set or the
// focused subtree by washing their color out, and tints hovered frames.
//
// Dimmed and blended colors are memoized per distinct input background.
type DimmingColorProvider[T any] struct {
	base    BaseColor[T]
	cfg     dimmingConfig
	dim     *colors.Memo[colors.Pair]
	halfDim *colors.Memo[colors.Pair]
	hover   *colors.Memo[colors.Pair]
}

// NewDimmingColorProvider builds the provider around a base color function.
func NewDimmingColorProvider[T any](base BaseColor[T], opts ...DimmingOption) *DimmingColorProvider[T] {
	cfg := dimmingConfig{
		root:       RootBackground,
		dimmedText: DimmedText,
		hovered:    HoveredOverlay,
		halfDim:    true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	hovered := cfg.hovered
	return &DimmingColorProvider[T]{
		base:    base,
		cfg:     cfg,
		dim:     colors.NewMemo(colors.Dim),
		halfDim: colors.NewMemo(colors.HalfDim),
		hover: colors.NewMemo(func(bg color.NRGBA) colors.Pair {
			return colors.Pair{Light: colors.Blend(bg, hovered.Light), Dark: colors.Blend(bg, hovered.Dark)}
		}),
	}
}

// Colors implements [ColorProvider].
func (p *DimmingColorProvider[T]) Colors(f *frame.Box[T], flags Flags, theme colors.Theme) ColorModel {
	root := f.IsRoot()
	bg := p.cfg.root.For(theme)
	if !root {
		bg = p.base(f)
	}
	if flags.Has(Minimap) {
		return ColorModel{Background: bg}
	}

	var fg color.NRGBA
	if !root && flags.ShouldDim() {
		if p.cfg.halfDim && !flags.DimmedForHighlight() {
			bg = p.halfDim.Get(bg).For(theme)
		} else {
			bg = p.dim.Get(bg).For(theme)
		}
		fg = p.cfg.dimmedText.For(theme)
	} else {
		fg = colors.Foreground(bg, theme)
	}

	if flags.Has(Hovered) {
		bg = p.hover.Get(bg).For(theme)
		fg = colors.Foreground(bg, theme)
	}
	if flags.Has(HoveredSibling) {
		bg = p.hover.Get(bg).For(theme)
		fg = colors.Foreground(bg, theme)
	}
	return ColorModel{Background: bg, Foreground: fg}
}

// BlendingColorProvider darkens frames outside the focus, fades frames
// outside the highlight set toward the panel color and shades hovered
// frames. Highlighted frames keep their base color.
type BlendingColorProvider[T any] struct {
	base   BaseColor[T]
	blends *colors.Memo[blendSet]
}

type blendSet struct {
	unfocused   color.NRGBA
	faded       colors.Pair
	fadedDarker colors.Pair
}

// NewBlendingColorProvider builds the provider around a base color function.
func NewBlendingColorProvider[T any](base BaseColor[T]) *BlendingColorProvider[T] {
	return &BlendingColorProvider[T]{
		base: base,
		blends: colors.NewMemo(func(bg color.NRGBA) blendSet {
			unfocused := colors.Blend(bg, colors.ARGB(0x80000000))
			return blendSet{
				unfocused: unfocused,
				faded: colors.Pair{
					Light: colors.Blend(bg, HighlightOverlay.Light),
					Dark:  colors.Blend(bg, HighlightOverlay.Dark),
				},
				fadedDarker: colors.Pair{
					Light: colors.Blend(unfocused, HighlightOverlay.Light),
					Dark:  colors.Blend(unfocused, HighlightOverlay.Dark),
				},
			}
		}),
	}
}

// Colors implements [ColorProvider].
func (p *BlendingColorProvider[T]) Colors(f *frame.Box[T], flags Flags, theme colors.Theme) ColorModel {
	base := p.base(f)
	if flags.Has(Minimap) {
		return ColorModel{Background: base}
	}
	set := p.blends.Get(base)

	bg := base
	unfocused := flags.DimmedForFocus()
	if unfocused {
		bg = set.unfocused
	}
	if flags.Has(Highlighting) && !flags.Has(Highlighted) {
		if unfocused {
			bg = set.fadedDarker.For(theme)
		} else {
			bg = set.faded.For(theme)
		}
	}
	if flags.Has(Hovered) {
		bg = colors.Blend(bg, colors.ARGB(0x40000000))
	}
	return ColorModel{Background: bg, Foreground: colors.Foreground(bg, theme)}
}
