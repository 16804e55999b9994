package vecmap

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	defaultUnmarshal = json.Unmarshal
	defaultMarshal   = json.Marshal
)

func appendLength(buf []byte, n int) []byte {
	return protowire.AppendVarint(buf, uint64(n))
}

func appendBody(buf []byte, elem interface{}, marshal func(interface{}) ([]byte, error)) ([]byte, error) {
	body, err := marshal(elem)
	if err != nil {
		return nil, err
	}
	return protowire.AppendBytes(buf, body), nil
}

func decodeLength(buf []byte, n *int) ([]byte, error) {
	k, l := protowire.ConsumeVarint(buf)
	if l < 0 {
		return nil, fmt.Errorf("bad length: %w", protowire.ParseError(l))
	}
	if k > uint64(len(buf)) {
		return nil, errors.New("length exceeds input")
	}
	*n = int(k)
	return buf[l:], nil
}

func decodeBytes(buf []byte, body *[]byte) ([]byte, error) {
	b, l := protowire.ConsumeBytes(buf)
	if l < 0 {
		return nil, fmt.Errorf("bad body: %w", protowire.ParseError(l))
	}
	*body = b
	return buf[l:], nil
}

// MarshalBinary implements encoding.BinaryMarshaler, marshaling keys and
// values as JSON.
func (m *Map[K, V]) MarshalBinary() ([]byte, error) {
	return m.MarshalBinaryWith(defaultMarshal)
}

// MarshalBinaryWith encodes the entry count as a varint, followed by each
// entry's key and value in ascending key order, each length-prefixed and
// produced by marshal.
func (m *Map[K, V]) MarshalBinaryWith(marshal func(interface{}) ([]byte, error)) ([]byte, error) {
	buf := appendLength(nil, len(m.entries))
	var err error
	for i := range m.entries {
		buf, err = appendBody(buf, m.entries[i].Key, marshal)
		if err != nil {
			return nil, fmt.Errorf("marshal key[%d]: %w", i, err)
		}
		buf, err = appendBody(buf, m.entries[i].Value, marshal)
		if err != nil {
			return nil, fmt.Errorf("marshal value[%d]: %w", i, err)
		}
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for data produced by
// MarshalBinary.
func (m *Map[K, V]) UnmarshalBinary(data []byte) error {
	return m.UnmarshalBinaryWith(data, defaultUnmarshal)
}

// UnmarshalBinaryWith replaces the map's contents with the entries encoded in
// data. Entries need not be sorted or unique; the last value for a key wins.
// On error the map is left unchanged.
func (m *Map[K, V]) UnmarshalBinaryWith(data []byte, unmarshal func([]byte, interface{}) error) error {
	var total int
	buf, err := decodeLength(data, &total)
	if err != nil {
		return fmt.Errorf("entry count: %w", err)
	}
	staged, err := m.staging(total)
	if err != nil {
		return err
	}
	for i := 0; i < total; i++ {
		var kb, vb []byte
		buf, err = decodeBytes(buf, &kb)
		if err != nil {
			return fmt.Errorf("key[%d]: %w", i, err)
		}
		buf, err = decodeBytes(buf, &vb)
		if err != nil {
			return fmt.Errorf("value[%d]: %w", i, err)
		}
		var k K
		var v V
		if err = unmarshal(kb, &k); err != nil {
			return fmt.Errorf("unmarshal key[%d]: %w", i, err)
		}
		if err = unmarshal(vb, &v); err != nil {
			return fmt.Errorf("unmarshal value[%d]: %w", i, err)
		}
		staged.place(k, v)
	}
	if len(buf) != 0 {
		return fmt.Errorf("%d trailing bytes", len(buf))
	}
	m.commit(staged)
	return nil
}

// staging returns an empty map with m's key order for a decoder to fill, so
// that a failed decode leaves m as it was.
func (m *Map[K, V]) staging(sizeHint int) (*Map[K, V], error) {
	m.checkExclusive()
	compare := m.compare
	if compare == nil {
		if compare = defaultCompare[K](); compare == nil {
			var zero K
			return nil, fmt.Errorf("don't know how to order %T keys; construct the map with NewFunc or implement Key", zero)
		}
	}
	staged := &Map[K, V]{compare: compare, debug: m.debug}
	if sizeHint > 0 {
		staged.entries = make([]Entry[K, V], 0, sizeHint)
	}
	return staged, nil
}

// commit replaces m's entries with those of a fully decoded staging map.
func (m *Map[K, V]) commit(staged *Map[K, V]) {
	m.checkExclusive()
	m.structural()
	m.compare = staged.compare
	m.entries = staged.entries
	if m.debug {
		fmt.Printf("decoded %d entries\n", len(m.entries))
	}
}
