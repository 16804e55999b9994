package vecmap

// cursor walks the half-open range [front, back) of a map's entries from
// either end. Once the ends meet it stays exhausted.
type cursor[K, V any] struct {
	m           *Map[K, V]
	generation  uint64
	front, back int
	exclusive   bool
}

func newCursor[K, V any](m *Map[K, V]) cursor[K, V] {
	if m.borrowed {
		panic("vecmap: view requested while a ValuesMut is outstanding")
	}
	return cursor[K, V]{m: m, generation: m.generation, back: len(m.entries)}
}

func (c *cursor[K, V]) next() (*Entry[K, V], bool) {
	if c.front >= c.back {
		return nil, false
	}
	c.check()
	e := &c.m.entries[c.front]
	c.front++
	return e, true
}

func (c *cursor[K, V]) nextBack() (*Entry[K, V], bool) {
	if c.front >= c.back {
		return nil, false
	}
	c.check()
	c.back--
	return &c.m.entries[c.back], true
}

func (c *cursor[K, V]) check() {
	if c.m.borrowed && !c.exclusive {
		panic("vecmap: view used while a ValuesMut is outstanding")
	}
	if c.m.generation != c.generation {
		panic("vecmap: map structurally modified during iteration")
	}
}

// Len returns the number of entries not yet yielded from either end.
func (c *cursor[K, V]) Len() int {
	return c.back - c.front
}

// Iter yields keys and values in ascending key order.
type Iter[K, V any] struct {
	cursor[K, V]
}

// Iter returns an iterator over the entries.
func (m *Map[K, V]) Iter() *Iter[K, V] {
	return &Iter[K, V]{newCursor(m)}
}

// Next yields the smallest key not yet yielded, and its value.
func (it *Iter[K, V]) Next() (K, V, bool) {
	e, ok := it.next()
	if !ok {
		var k K
		var v V
		return k, v, false
	}
	return e.Key, e.Value, true
}

// NextBack yields the greatest key not yet yielded, and its value.
func (it *Iter[K, V]) NextBack() (K, V, bool) {
	e, ok := it.nextBack()
	if !ok {
		var k K
		var v V
		return k, v, false
	}
	return e.Key, e.Value, true
}

// Keys yields keys in ascending order.
type Keys[K, V any] struct {
	cursor[K, V]
}

// Keys returns an iterator over the keys.
func (m *Map[K, V]) Keys() *Keys[K, V] {
	return &Keys[K, V]{newCursor(m)}
}

func (it *Keys[K, V]) Next() (K, bool) {
	e, ok := it.next()
	if !ok {
		var k K
		return k, false
	}
	return e.Key, true
}

func (it *Keys[K, V]) NextBack() (K, bool) {
	e, ok := it.nextBack()
	if !ok {
		var k K
		return k, false
	}
	return e.Key, true
}

// Values yields values in ascending order of their keys.
type Values[K, V any] struct {
	cursor[K, V]
}

// Values returns an iterator over the values.
func (m *Map[K, V]) Values() *Values[K, V] {
	return &Values[K, V]{newCursor(m)}
}

func (it *Values[K, V]) Next() (V, bool) {
	e, ok := it.next()
	if !ok {
		var v V
		return v, false
	}
	return e.Value, true
}

func (it *Values[K, V]) NextBack() (V, bool) {
	e, ok := it.nextBack()
	if !ok {
		var v V
		return v, false
	}
	return e.Value, true
}

// ValuesMut yields pointers to the values, in ascending order of their keys,
// so they can be updated in place. Keys are never exposed for writing.
//
// A ValuesMut holds the map exclusively until it is exhausted or closed:
// until then, modifying the map or reading through any other view of it
// panics.
type ValuesMut[K, V any] struct {
	cursor[K, V]
}

// ValuesMut returns an iterator over pointers to the values.
func (m *Map[K, V]) ValuesMut() *ValuesMut[K, V] {
	it := &ValuesMut[K, V]{newCursor(m)}
	it.exclusive = true
	if it.Len() > 0 {
		m.borrowed = true
	}
	return it
}

func (it *ValuesMut[K, V]) Next() (*V, bool) {
	e, ok := it.next()
	it.release()
	if !ok {
		return nil, false
	}
	return &e.Value, true
}

func (it *ValuesMut[K, V]) NextBack() (*V, bool) {
	e, ok := it.nextBack()
	it.release()
	if !ok {
		return nil, false
	}
	return &e.Value, true
}

// Close gives up the remaining values and releases the map. Pointers already
// yielded must not be used afterwards.
func (it *ValuesMut[K, V]) Close() {
	it.front = it.back
	it.release()
}

func (it *ValuesMut[K, V]) release() {
	if it.front >= it.back {
		it.m.borrowed = false
	}
}

// IntoIter yields the entries a map used to own, in ascending key order.
type IntoIter[K, V any] struct {
	entries     []Entry[K, V]
	front, back int
}

// IntoIter moves all entries out of the map, leaving it empty with no
// capacity, and returns an iterator over them.
func (m *Map[K, V]) IntoIter() *IntoIter[K, V] {
	m.checkExclusive()
	m.structural()
	entries := m.entries
	m.entries = nil
	return &IntoIter[K, V]{entries: entries, back: len(entries)}
}

func (it *IntoIter[K, V]) Next() (Entry[K, V], bool) {
	if it.front >= it.back {
		return Entry[K, V]{}, false
	}
	e := it.entries[it.front]
	it.entries[it.front] = Entry[K, V]{}
	it.front++
	return e, true
}

func (it *IntoIter[K, V]) NextBack() (Entry[K, V], bool) {
	if it.front >= it.back {
		return Entry[K, V]{}, false
	}
	it.back--
	e := it.entries[it.back]
	it.entries[it.back] = Entry[K, V]{}
	return e, true
}

// Len returns the number of entries not yet yielded from either end.
func (it *IntoIter[K, V]) Len() int {
	return it.back - it.front
}

// Each invokes f for every entry in ascending key order, stopping at the
// first error, which it returns. f must not change the set of keys.
func (m *Map[K, V]) Each(f func(key K, value V) error) error {
	c := newCursor(m)
	for {
		e, ok := c.next()
		if !ok {
			return nil
		}
		if err := f(e.Key, e.Value); err != nil {
			return err
		}
	}
}
