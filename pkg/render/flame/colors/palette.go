package colors

import (
	"image/color"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/stackflame/pkg/errors"
)

// Palette is an ordered set of frame background colors.
type Palette []color.NRGBA

func hexPalette(codes ...string) Palette {
	p := make(Palette, 0, len(codes))
	for _, c := range codes {
		v, err := ParseHex(c)
		if err != nil {
			panic(err)
		}
		p = append(p, v)
	}
	return p
}

func rgbPalette(values ...uint32) Palette {
	p := make(Palette, 0, len(values))
	for _, v := range values {
		p = append(p, RGB(v))
	}
	return p
}

var palettes = map[string]Palette{
	"light-black-to-yellow":       hexPalette("#03071e", "#370617", "#6a040f", "#9d0208", "#d00000", "#dc2f02", "#e85d04", "#f48c06", "#faa307", "#ffba08"),
	"light-red-to-blue":           hexPalette("#f94144", "#f3722c", "#f8961e", "#f9c74f", "#90be6d", "#43aa8b", "#577590"),
	"light-violet-to-orange":      hexPalette("#54478c", "#2c699a", "#048ba8", "#0db39e", "#16db93", "#83e377", "#b9e769", "#efea5a", "#f1c453", "#f29e4c"),
	"light-black-to-beige-to-red": hexPalette("#001219", "#005f73", "#0a9396", "#94d2bd", "#e9d8a6", "#ee9b00", "#ca6702", "#bb3e03", "#ae2012", "#9b2226"),
	"dark-black-to-slate":         hexPalette("#000000", "#241327", "#301934", "#3e1f3d", "#4c2445", "#5a2a4d", "#682f55", "#46324c", "#353347", "#243442"),
	"dark-greeny-to-violet":       hexPalette("#006466", "#065a60", "#0b525b", "#144552", "#1b3a4b", "#212f45", "#272640", "#312244", "#3e1f47", "#4d194d"),
	"dark-light":                  hexPalette("#E91E63", "#C2185B", "#9C27B0", "#5727B0", "#272AB0", "#2768B0", "#57ACDC", "#57DCBE", "#60C689"),
	"dark-custom":                 hexPalette("#54B03B", "#2D8684", "#C2AB47", "#66CCB9", "#A1DD98", "#9D5B34", "#A190DA", "#623BB0", "#CF776E", "#DDD598", "#F2E30D"),
	"light-blue-green-orange-red": hexPalette(
		"#003565", "#004F99", "#1272CB", "#0084FF",
		"#014A15", "#00701F", "#009529", "#00BA34",
		"#643600", "#955000", "#C76B00", "#F98600",
		"#5D1113", "#8C1A19", "#BA2323", "#E92C2B",
		"#FFD966", "#FFE8A0", "#FFF0C6", "#FFF4E0",
		"#5D00A8", "#9E00C9", "#D300E9", "#FF00FF",
	),
	"datadog": rgbPalette(
		0x3399CC, 0x927FB9, 0xFFCC00, 0x57B79A, 0xBE53BB, 0xDD8451, 0x3969B3, 0xBED017, 0x8934A4, 0x3BCBCB,
		0x6E69CC, 0x50931F, 0xC86B74, 0xFCAF2B, 0x2EB0DE, 0xC68CCD, 0x457557, 0xCC3C71, 0x985083, 0xA7B342,
	),
	"pyroscope": rgbPalette(
		0xDF8B53, 0xE0AD6C, 0x68B7CF, 0x59C0A3, 0x6897CA, 0x8982C9, 0xEBA8E6, 0xFFE175, 0xB7DBAB, 0xF4D598, 0x70DBED, 0xF9BA8F,
		0xF29191, 0x82B5D8, 0xE5A8E2, 0xAEA2E0, 0x9AC48A, 0xF2C96D, 0x65C5DB, 0xF9934E, 0xEA6460, 0x5195CE, 0xD683CE, 0x806EB7,
	),
}

// DefaultPalette is the palette name used when none is configured.
const DefaultPalette = "pyroscope"

// LookupPalette returns a copy of the named palette.
func LookupPalette(name string) (Palette, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q", name)
	}
	return slices.Clone(p), nil
}

// PaletteNames lists the known palettes in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns the palette entry for key, chosen by hash so that equal keys
// always get the same color. An empty key maps to the first entry.
func (p Palette) Map(key string) color.NRGBA {
	if len(p) == 0 {
		return color.NRGBA{}
	}
	if key == "" {
		return p[0]
	}
	return p[xxhash.Sum64String(key)%uint64(len(p))]
}
