package colors

import (
	"image/color"
	"sync"
)

// Memo caches a pure color function per distinct input color.
//
// It is safe for concurrent use, so the interactive paint path and a
// background minimap render may share one.
type Memo[V any] struct {
	fn    func(color.NRGBA) V
	cache sync.Map // color.NRGBA -> V
}

// NewMemo wraps fn.
func NewMemo[V any](fn func(color.NRGBA) V) *Memo[V] {
	return &Memo[V]{fn: fn}
}

// Get returns fn(c), computing it at most once per distinct c in the common
// case.
func (m *Memo[V]) Get(c color.NRGBA) V {
	if v, ok := m.cache.Load(c); ok {
		return v.(V)
	}
	v := m.fn(c)
	m.cache.Store(c, v)
	return v
}

// Len returns the number of cached entries.
func (m *Memo[V]) Len() int {
	n := 0
	m.cache.Range(func(_, _ any) bool { n++; return true })
	return n
}
