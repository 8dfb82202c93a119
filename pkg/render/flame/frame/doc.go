// Package frame holds the proportional layout of a flame graph.
//
// A weighted call tree is flattened once, depth-first and pre-order, into a
// slice of [Box] values. Each box records the horizontal span a node occupies
// as fractions of the total width ([0,1]) and its stack depth. Children split
// their parent's span in proportion to their weight, earlier siblings taking
// the lower X range:
//
//	root [0.0 ─────────────────────── 1.0] depth 0
//	A    [0.0 ──────────── 0.6]            depth 1
//	A1   [0.0 ──────────── 0.6]            depth 2
//	B                      [0.6 ──── 1.0]  depth 1
//
// The flattened slice keeps traversal order: index 0 is the root and every
// node's descendants are contiguous right after it. A [Model] wraps the
// slice together with a title and an equality predicate used to find
// recurring occurrences of the same frame.
//
// Boxes and models are immutable once built. A new data load builds a new
// model; nothing is patched in place.
package frame
