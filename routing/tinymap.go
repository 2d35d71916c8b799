// Package routing provides the protocol-independent building blocks shared
// by queryserve protocol adapters: the compact route table, the type-erased
// route handle, and the response helpers used by every adapter's error
// mapping.
package routing

import "iter"

// Entry is a single route-table pair.
type Entry[V any] struct {
	Key   string
	Value V
}

// TinyMap is an immutable string-keyed map tuned for route tables.
//
// Route tables are built once and then read on every request, at sizes
// anywhere from a handful of operations to several hundred. At or below the
// cutoff supplied at construction, Get is a linear scan over a slice, which
// is cheap to build and cache-friendly for small N. Above the cutoff an
// index is built alongside the slice for O(1) average lookups. The two
// representations return identical results for identical inputs and both
// iterate in insertion order.
type TinyMap[V any] struct {
	entries []Entry[V]
	cutoff  int
	// index is nil when len(entries) <= cutoff.
	index map[string]int
}

// NewTinyMap bulk-constructs a table from entries. The table is immutable
// afterwards. Keys are expected to be unique; if a key repeats, the later
// value replaces the earlier one at its original position.
func NewTinyMap[V any](entries []Entry[V], cutoff int) *TinyMap[V] {
	dedup := make([]Entry[V], 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Key]; ok {
			dedup[i].Value = e.Value
			continue
		}
		pos[e.Key] = len(dedup)
		dedup = append(dedup, e)
	}

	m := &TinyMap[V]{entries: dedup, cutoff: cutoff}
	if len(dedup) > cutoff {
		m.index = pos
	}
	return m
}

// Get returns the value stored under key.
func (m *TinyMap[V]) Get(key string) (V, bool) {
	var zero V
	if m.index != nil {
		i, ok := m.index[key]
		if !ok {
			return zero, false
		}
		return m.entries[i].Value, true
	}
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return zero, false
}

// Len returns the number of entries.
func (m *TinyMap[V]) Len() int { return len(m.entries) }

// Keys returns the keys in insertion order.
func (m *TinyMap[V]) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// All iterates over (key, value) pairs in insertion order.
func (m *TinyMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// MapValues builds a new table with the same keys, order, and cutoff, each
// value replaced by f(value). The receiver is not modified.
func (m *TinyMap[V]) MapValues(f func(V) V) *TinyMap[V] {
	return MapTinyMap(m, func(_ string, v V) V { return f(v) })
}

// MapTinyMap builds a new table with the same keys, order, and cutoff as m,
// each value replaced by f(key, value). It is the cross-type counterpart of
// [TinyMap.MapValues]; Go methods cannot introduce type parameters, so the
// value-type-changing transformation is a package function.
func MapTinyMap[V, W any](m *TinyMap[V], f func(string, V) W) *TinyMap[W] {
	entries := make([]Entry[W], len(m.entries))
	for i, e := range m.entries {
		entries[i] = Entry[W]{Key: e.Key, Value: f(e.Key, e.Value)}
	}
	return NewTinyMap(entries, m.cutoff)
}
