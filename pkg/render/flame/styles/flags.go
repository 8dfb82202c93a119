// Package styles decides how each frame looks: its colors, its font and the
// label it carries.
//
// Every decision is a pure function of the frame, an 8-bit [Flags] set
// computed by the engine for that frame and, for colors, the theme. The
// strategies are small interfaces so hosts can plug in their own policy.
package styles

import "strings"

// Flags is the per-frame render state computed once per paint call.
// Bits combine freely: a frame can be hovered and partially clipped at once.
type Flags uint8

const (
	// Minimap marks a thumbnail pass: color only, no text or gaps.
	Minimap Flags = 1 << iota
	// Highlighting is set on every frame while a highlight set is active.
	Highlighting
	// Highlighted marks a frame in the highlight set. Never set on the root.
	Highlighted
	// Hovered marks the frame under the pointer.
	Hovered
	// HoveredSibling marks a frame equal to the hovered one, elsewhere in the tree.
	HoveredSibling
	// Focusing is set on every frame while a frame is selected.
	Focusing
	// Focused marks the selected frame and its descendants.
	Focused
	// Partial marks a frame whose left edge is clipped by the viewport.
	Partial
)

var flagNames = [...]string{"minimap", "highlighting", "highlighted", "hovered", "hovered-sibling", "focusing", "focused", "partial"}

// FlagsOf packs the eight states into a Flags value.
func FlagsOf(minimap, highlighting, highlighted, hovered, hoveredSibling, focusing, focused, partial bool) Flags {
	var f Flags
	f = f.With(Minimap, minimap)
	f = f.With(Highlighting, highlighting)
	f = f.With(Highlighted, highlighted)
	f = f.With(Hovered, hovered)
	f = f.With(HoveredSibling, hoveredSibling)
	f = f.With(Focusing, focusing)
	f = f.With(Focused, focused)
	f = f.With(Partial, partial)
	return f
}

// Has reports whether every bit of b is set.
func (f Flags) Has(b Flags) bool { return f&b == b }

// With sets or clears b.
func (f Flags) With(b Flags, on bool) Flags {
	if on {
		return f | b
	}
	return f &^ b
}

// DimmedForHighlight reports a frame outside an active highlight set.
func (f Flags) DimmedForHighlight() bool {
	return f.Has(Highlighting) && !f.Has(Highlighted)
}

// DimmedForFocus reports a frame outside the focused subtree.
func (f Flags) DimmedForFocus() bool {
	return f.Has(Focusing) && !f.Has(Focused)
}

// ShouldDim applies the dimming precedence: a frame is dimmed when either
// mode excludes it, except when both modes are active and it belongs to at
// least one of them.
func (f Flags) ShouldDim() bool {
	highlighting, focusing := f.Has(Highlighting), f.Has(Focusing)
	exempt := highlighting && focusing && (f.Has(Highlighted) || f.Has(Focused))
	return (f.DimmedForHighlight() || f.DimmedForFocus()) && !exempt
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
