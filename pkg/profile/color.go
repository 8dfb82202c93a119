package profile

import (
	"image/color"
	"strings"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// ColorMode selects how frames are colored.
type ColorMode string

const (
	// ByPackage maps the frame's package onto the palette. Runtime and
	// native frames share one color.
	ByPackage ColorMode = "package"
	// ByName maps the full frame name onto the palette.
	ByName ColorMode = "name"
	// ByKind colors frames by execution mode.
	ByKind ColorMode = "kind"
)

// ParseColorMode parses a color mode name, defaulting to [ByPackage].
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ByPackage, nil
	case ByPackage, ByName, ByKind:
		return m, nil
	}
	return ByPackage, errors.New(errors.ErrCodeInvalidInput, "unknown color mode %q (want package, name or kind)", s)
}

// Frame colors independent of the palette.
var (
	RuntimeColor     = color.NRGBA{R: 34, G: 107, B: 232, A: 255}
	UnknownColor     = color.NRGBA{R: 108, G: 163, B: 189, A: 255}
	JITColor         = color.NRGBA{R: 21, G: 110, B: 64, A: 255}
	InlinedColor     = color.NRGBA{R: 255, G: 175, B: 175, A: 255}
	InterpretedColor = color.NRGBA{R: 255, G: 200, B: 0, A: 255}
	CompiledColor    = color.NRGBA{R: 120, G: 190, B: 120, A: 255}
)

// BaseColor returns the base color function for mode over palette p.
func BaseColor(mode ColorMode, p colors.Palette) styles.BaseColor[*Node] {
	switch mode {
	case ByName:
		return styles.PaletteColor(p, Name)
	case ByKind:
		return func(f *frame.Box[*Node]) color.NRGBA { return kindColor(f.Node.Kind) }
	default:
		return func(f *frame.Box[*Node]) color.NRGBA {
			n := f.Node
			if n.Kind == KindNative || n.Kind == KindKernel || IsRuntime(n.Name) {
				return RuntimeColor
			}
			return p.Map(Group(n.Name))
		}
	}
}

func kindColor(k Kind) color.NRGBA {
	switch k {
	case KindInterpreted:
		return InterpretedColor
	case KindCompiled:
		return CompiledColor
	case KindJIT:
		return JITColor
	case KindInlined:
		return InlinedColor
	case KindNative, KindKernel:
		return RuntimeColor
	}
	return UnknownColor
}

// Labels returns the label candidates tried in order when a frame's full
// name does not fit: the full name, the name without its package path, and
// the bare function name.
func Labels() []func(*frame.Box[*Node]) string {
	return []func(*frame.Box[*Node]) string{
		func(f *frame.Box[*Node]) string { return f.Node.Name },
		func(f *frame.Box[*Node]) string { return ShortName(f.Node.Name) },
		func(f *frame.Box[*Node]) string { return FuncName(f.Node.Name) },
	}
}
