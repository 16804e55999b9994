package vecmap

import (
	"fmt"
	"strings"

	"github.com/minio/blake2b-simd"
	"golang.org/x/exp/slices"
)

// Clone returns a map with the same order and a copy of the entries. Keys
// and values themselves are copied shallowly.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{
		entries: slices.Clone(m.entries),
		compare: m.compare,
		debug:   m.debug,
	}
}

// Equal reports whether a and b hold equal keys with equal values.
func Equal[K any, V comparable](a, b *Map[K, V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is Equal with a caller-supplied value equality. Keys are compared
// with a's key order.
func EqualFunc[K, V any](a, b *Map[K, V], eq func(x, y V) bool) bool {
	compare := a.cmp()
	return slices.EqualFunc(a.entries, b.entries, func(x, y Entry[K, V]) bool {
		return compare(x.Key, y.Key) == 0 && eq(x.Value, y.Value)
	})
}

// Compare orders maps lexicographically by their entries in key order, keys
// first and then values; a map that is a prefix of another sorts first.
func Compare[K any, V any](a, b *Map[K, V], cmpValue func(x, y V) int) int {
	compare := a.cmp()
	return slices.CompareFunc(a.entries, b.entries, func(x, y Entry[K, V]) int {
		if c := compare(x.Key, y.Key); c != 0 {
			return c
		}
		return cmpValue(x.Value, y.Value)
	})
}

// Hash returns the blake2b-256 digest of the map's binary encoding with
// keys and values marshaled as JSON. Maps holding identical entries hash the
// same. Equal maps may not: keys that tie under a custom order, or values such
// as 0.0 and -0.0 that compare equal but encode differently, change the digest.
func (m *Map[K, V]) Hash() ([32]byte, error) {
	return HashWith(m, defaultMarshal)
}

// HashWith is Hash with a caller-supplied element marshaler.
func HashWith[K, V any](m *Map[K, V], marshal func(interface{}) ([]byte, error)) ([32]byte, error) {
	encoded, err := m.MarshalBinaryWith(marshal)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode: %w", err)
	}
	return blake2b.Sum256(encoded), nil
}

// String formats the map as {k1: v1, k2: v2}.
func (m *Map[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: %v", e.Key, e.Value)
	}
	sb.WriteByte('}')
	return sb.String()
}
