package vecmap

import (
	"fmt"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Entry is a key and value stored in a Map.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Map keeps its entries in a single slice, sorted by key with no key
// appearing twice.
type Map[K, V any] struct {
	entries    []Entry[K, V]
	compare    func(a, b K) int
	generation uint64
	borrowed   bool
	debug      bool
}

// New returns an empty map ordered by the natural order of K. It does not
// allocate until the first entry is added.
func New[K constraints.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{compare: OrderedCompare[K]}
}

// WithCapacity returns an empty map ordered by the natural order of K, able
// to hold at least capacity entries before growing.
func WithCapacity[K constraints.Ordered, V any](capacity int) *Map[K, V] {
	return NewFunc[K, V](OrderedCompare[K], capacity)
}

// NewFunc returns an empty map ordered by compare, which must return a
// negative number when a < b, a positive number when a > b and zero when they
// are equal, and must be a strict total order over the keys ever stored.
func NewFunc[K, V any](compare func(a, b K) int, capacity int) *Map[K, V] {
	if compare == nil {
		panic("vecmap: nil key order")
	}
	m := &Map[K, V]{compare: compare}
	if capacity > 0 {
		m.entries = make([]Entry[K, V], 0, capacity)
	}
	return m
}

// NewKeyed returns an empty map ordered by the keys' own Order method.
func NewKeyed[K Key[K], V any](capacity int) *Map[K, V] {
	return NewFunc[K, V](keyOrder[K], capacity)
}

// cmp returns the key order, falling back to a default one for zero-valued
// maps.
func (m *Map[K, V]) cmp() func(a, b K) int {
	if m.compare == nil {
		m.compare = defaultCompare[K]()
		if m.compare == nil {
			var zero K
			panic(fmt.Sprintf("vecmap: don't know how to order %T keys; construct the map with NewFunc or implement Key", zero))
		}
	}
	return m.compare
}

// SetDebug switches tracing of structural changes to stdout.
func (m *Map[K, V]) SetDebug(debug bool) {
	m.debug = debug
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.entries)
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return len(m.entries) == 0
}

// Cap returns how many entries the map can hold without growing.
func (m *Map[K, V]) Cap() int {
	return cap(m.entries)
}

// Reserve grows the capacity, if necessary, so that at least additional more
// entries fit without another allocation.
func (m *Map[K, V]) Reserve(additional int) {
	m.checkExclusive()
	if additional > 0 {
		m.entries = slices.Grow(m.entries, additional)
	}
}

// ShrinkToFit releases unused capacity.
func (m *Map[K, V]) ShrinkToFit() {
	m.checkExclusive()
	if len(m.entries) == cap(m.entries) {
		return
	}
	if len(m.entries) == 0 {
		m.entries = nil
		return
	}
	shrunk := make([]Entry[K, V], len(m.entries))
	copy(shrunk, m.entries)
	m.entries = shrunk
}

// BinarySearch looks for key. If present, it returns its position and true.
// Otherwise it returns the position where key would be inserted to keep the
// map sorted, which is the number of keys less than it, and false.
func (m *Map[K, V]) BinarySearch(key K) (int, bool) {
	compare := m.cmp()
	return slices.BinarySearchFunc(m.entries, key, func(e Entry[K, V], key K) int {
		return compare(e.Key, key)
	})
}

// SearchFunc is BinarySearch with a probe of another type, such as a []byte
// looked up among string keys. cmp compares a stored key against the probe
// and must agree with the map's key order.
func SearchFunc[K, V, Q any](m *Map[K, V], probe Q, cmp func(key K, probe Q) int) (int, bool) {
	return slices.BinarySearchFunc(m.entries, probe, func(e Entry[K, V], probe Q) int {
		return cmp(e.Key, probe)
	})
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	i, found := m.BinarySearch(key)
	if !found {
		var zero V
		return zero, false
	}
	return m.entries[i].Value, true
}

// GetFunc returns the value stored under the key matching probe.
func GetFunc[K, V, Q any](m *Map[K, V], probe Q, cmp func(key K, probe Q) int) (V, bool) {
	i, found := SearchFunc(m, probe, cmp)
	if !found {
		var zero V
		return zero, false
	}
	return m.entries[i].Value, true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, found := m.BinarySearch(key)
	return found
}

// Insert stores value under key. If the key was already present, only its
// value is replaced, and the previous value is returned with true.
func (m *Map[K, V]) Insert(key K, value V) (old V, replaced bool) {
	m.checkExclusive()
	i, found := m.BinarySearch(key)
	if found {
		old, m.entries[i].Value = m.entries[i].Value, value
		if m.debug {
			fmt.Printf("replaced value of %v at %d\n", key, i)
		}
		return old, true
	}
	m.structural()
	m.entries = slices.Insert(m.entries, i, Entry[K, V]{key, value})
	if m.debug {
		fmt.Printf("inserted %v at %d of %d\n", key, i, len(m.entries))
	}
	return old, false
}

// Remove deletes key, returning its value if it was present.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	m.checkExclusive()
	i, found := m.BinarySearch(key)
	if !found {
		var zero V
		return zero, false
	}
	return m.removeAt(i).Value, true
}

// RemoveFunc deletes the key matching probe, returning its value if it was
// present.
func RemoveFunc[K, V, Q any](m *Map[K, V], probe Q, cmp func(key K, probe Q) int) (V, bool) {
	m.checkExclusive()
	i, found := SearchFunc(m, probe, cmp)
	if !found {
		var zero V
		return zero, false
	}
	return m.removeAt(i).Value, true
}

func (m *Map[K, V]) removeAt(i int) Entry[K, V] {
	m.structural()
	removed := m.entries[i]
	last := len(m.entries) - 1
	copy(m.entries[i:], m.entries[i+1:])
	m.entries[last] = Entry[K, V]{}
	m.entries = m.entries[:last]
	if m.debug {
		fmt.Printf("removed %v from %d, %d left\n", removed.Key, i, len(m.entries))
	}
	return removed
}

// Push appends key and value if the map is empty or key is greater than every
// key present, and returns true. Otherwise nothing changes and the pair is
// handed back with false; use Insert to place it.
func (m *Map[K, V]) Push(key K, value V) (Entry[K, V], bool) {
	m.checkExclusive()
	if n := len(m.entries); n > 0 && m.cmp()(m.entries[n-1].Key, key) >= 0 {
		return Entry[K, V]{key, value}, false
	}
	m.structural()
	m.entries = append(m.entries, Entry[K, V]{key, value})
	return Entry[K, V]{}, true
}

// Pop removes and returns the entry with the greatest key.
func (m *Map[K, V]) Pop() (Entry[K, V], bool) {
	m.checkExclusive()
	if len(m.entries) == 0 {
		return Entry[K, V]{}, false
	}
	return m.removeAt(len(m.entries) - 1), true
}

// Clear removes all entries, keeping the allocated capacity.
func (m *Map[K, V]) Clear() {
	m.checkExclusive()
	m.structural()
	for i := range m.entries {
		m.entries[i] = Entry[K, V]{}
	}
	m.entries = m.entries[:0]
}

// First returns the entry with the smallest key.
func (m *Map[K, V]) First() (Entry[K, V], bool) {
	if len(m.entries) == 0 {
		return Entry[K, V]{}, false
	}
	return m.entries[0], true
}

// Last returns the entry with the greatest key.
func (m *Map[K, V]) Last() (Entry[K, V], bool) {
	if len(m.entries) == 0 {
		return Entry[K, V]{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// At returns the value of the i-th smallest key. It panics if i is out of
// range.
func (m *Map[K, V]) At(i int) V {
	m.checkIndex(i)
	return m.entries[i].Value
}

// SetAt replaces the value of the i-th smallest key. It panics if i is out of
// range.
func (m *Map[K, V]) SetAt(i int, value V) {
	m.checkExclusive()
	m.checkIndex(i)
	m.entries[i].Value = value
}

// KeyAt returns the i-th smallest key. It panics if i is out of range.
func (m *Map[K, V]) KeyAt(i int) K {
	m.checkIndex(i)
	return m.entries[i].Key
}

// EntryAt returns the i-th smallest key and its value. It panics if i is out
// of range.
func (m *Map[K, V]) EntryAt(i int) (K, V) {
	m.checkIndex(i)
	return m.entries[i].Key, m.entries[i].Value
}

// Entries returns a read-only view of the entries in key order.
func (m *Map[K, V]) Entries() View[K, V] {
	return View[K, V]{m: m, generation: m.generation}
}

// View is a read-only window onto a map's entries. It is invalidated by any
// structural change to the map, after which using it panics.
type View[K, V any] struct {
	m          *Map[K, V]
	generation uint64
}

func (v View[K, V]) check() {
	if v.m.borrowed {
		panic("vecmap: view used while a ValuesMut is outstanding")
	}
	if v.m.generation != v.generation {
		panic("vecmap: view used after the map was structurally modified")
	}
}

// Len returns the number of entries.
func (v View[K, V]) Len() int {
	v.check()
	return len(v.m.entries)
}

// At returns the i-th entry. It panics if i is out of range.
func (v View[K, V]) At(i int) Entry[K, V] {
	v.check()
	v.m.checkIndex(i)
	return v.m.entries[i]
}

// Slice copies the entries into a new slice.
func (v View[K, V]) Slice() []Entry[K, V] {
	v.check()
	return slices.Clone(v.m.entries)
}

func (m *Map[K, V]) checkIndex(i int) {
	if i < 0 || i >= len(m.entries) {
		panic(fmt.Sprintf("vecmap: index out of range [%d] with length %d", i, len(m.entries)))
	}
}

// structural marks a change in the set of keys, invalidating views and
// positions.
func (m *Map[K, V]) structural() {
	m.generation++
}

func (m *Map[K, V]) checkExclusive() {
	if m.borrowed {
		panic("vecmap: map modified while a ValuesMut is outstanding")
	}
}

func (m *Map[K, V]) dump() {
	fmt.Printf("len=%d cap=%d generation=%d\n", len(m.entries), cap(m.entries), m.generation)
	for i, e := range m.entries {
		fmt.Printf("  [%d] %v: %v\n", i, e.Key, e.Value)
	}
}

// validate panics if the entries are out of order.
func (m *Map[K, V]) validate() {
	compare := m.cmp()
	for i := 1; i < len(m.entries); i++ {
		if compare(m.entries[i-1].Key, m.entries[i].Key) >= 0 {
			m.dump()
			panic(fmt.Sprintf("vecmap: entries out of order at %d: %v >= %v", i, m.entries[i-1].Key, m.entries[i].Key))
		}
	}
}
