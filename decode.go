package vecmap

import "golang.org/x/exp/constraints"

// Extend adds every pair next produces until it reports false. Pairs may
// come in any order and repeat keys, in which case the last value wins. Input
// already sorted by key costs O(n); out-of-order pairs fall back to Insert.
func (m *Map[K, V]) Extend(next func() (K, V, bool)) {
	for {
		k, v, ok := next()
		if !ok {
			return
		}
		m.place(k, v)
	}
}

func (m *Map[K, V]) place(key K, value V) {
	if rejected, ok := m.Push(key, value); !ok {
		m.Insert(rejected.Key, rejected.Value)
	}
}

// Collect builds a map ordered by the natural order of K from the pairs next
// produces. sizeHint is used as the initial capacity.
func Collect[K constraints.Ordered, V any](sizeHint int, next func() (K, V, bool)) *Map[K, V] {
	return CollectFunc[K, V](OrderedCompare[K], sizeHint, next)
}

// CollectFunc builds a map ordered by compare from the pairs next produces.
func CollectFunc[K, V any](compare func(a, b K) int, sizeHint int, next func() (K, V, bool)) *Map[K, V] {
	m := NewFunc[K, V](compare, sizeHint)
	m.Extend(next)
	return m
}

// FromEntries builds a map from entries in any order; for repeated keys the
// later entry wins.
func FromEntries[K constraints.Ordered, V any](entries []Entry[K, V]) *Map[K, V] {
	return Collect(len(entries), EntryProducer(entries))
}

// FromMap builds a map holding the contents of a builtin map.
func FromMap[K constraints.Ordered, V any](src map[K]V) *Map[K, V] {
	m := WithCapacity[K, V](len(src))
	for k, v := range src {
		m.Insert(k, v)
	}
	return m
}

// EntryProducer adapts a slice of entries to the producer form taken by
// Extend and Collect.
func EntryProducer[K, V any](entries []Entry[K, V]) func() (K, V, bool) {
	i := 0
	return func() (K, V, bool) {
		if i >= len(entries) {
			var k K
			var v V
			return k, v, false
		}
		e := entries[i]
		i++
		return e.Key, e.Value, true
	}
}
