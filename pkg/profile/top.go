package profile

import (
	"cmp"
	"slices"
)

// FuncStat is the weight of one function summed over every call site.
type FuncStat struct {
	Name string
	Kind Kind
	// Self is the weight of samples ending in the function.
	Self float64
	// Total is the weight of samples with the function anywhere on the
	// stack. Recursive calls are counted once.
	Total float64
}

// Top returns the n heaviest functions of the tree by self weight, ties
// broken by total weight and then by name. The root is not a function and
// is left out. n <= 0 returns all functions.
func Top(root *Node, n int) []FuncStat {
	stats := map[string]*FuncStat{}
	var visit func(x *Node, onStack map[string]int)
	visit = func(x *Node, onStack map[string]int) {
		s, ok := stats[x.Name]
		if !ok {
			s = &FuncStat{Name: x.Name, Kind: x.Kind}
			stats[x.Name] = s
		}
		s.Self += x.Self
		if onStack[x.Name] == 0 {
			s.Total += x.Value
		}
		onStack[x.Name]++
		for _, c := range x.Children {
			visit(c, onStack)
		}
		onStack[x.Name]--
	}
	onStack := map[string]int{}
	for _, c := range root.Children {
		visit(c, onStack)
	}

	out := make([]FuncStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b FuncStat) int {
		if c := cmp.Compare(b.Self, a.Self); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
