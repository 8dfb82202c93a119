// Package profile holds the weighted call tree a flame graph is built from.
//
// # Overview
//
// A profile is a tree of [Node] values. Each node carries the name of a
// stack frame and its inclusive weight (samples, nanoseconds, bytes). The
// root is synthetic and stands for the whole profile.
//
// Two on-disk formats are understood:
//
//   - Folded stacks, one stack per line, frames separated by ';' and the
//     weight after the last space: "main;run;parse 12". This is the output
//     of stackcollapse scripts, async-profiler's collapsed mode and
//     pprof -raw converters.
//   - A JSON tree: {"name": "root", "value": 12, "children": [...]}.
//
// Use [Import] to load either by file path, or [ReadCollapsed] and
// [ReadJSON] for readers.
//
// # Flame graph models
//
// [ToModel] flattens a tree into a [frame.Model] ready for the render
// engine. Frames compare equal when their names are equal, which is what
// hovered-sibling highlighting relies on.
//
// [Matching] implements search: it returns the frames whose name contains
// the query, to be passed to the engine's highlight set.
//
// # Frame kinds
//
// async-profiler annotates frames with a suffix such as "_[j]" for JIT
// compiled code. [ParseName] strips it into a [Kind], and [Group] derives
// the package used to color frames.
package profile
