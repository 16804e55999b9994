package vecmap

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

const (
	cborMajorArray = 4
	cborMajorMap   = 5
	cborNull       = 0xf6
	cborBreak      = 0xff
)

// appendCBORHead appends the initial bytes of a CBOR data item of the given
// major type and length.
func appendCBORHead(buf []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(buf, m|byte(n))
	case n <= 0xff:
		return append(buf, m|24, byte(n))
	case n <= 0xffff:
		return append(buf, m|25, byte(n>>8), byte(n))
	case n <= 0xffffffff:
		return append(buf, m|26, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
	return append(buf, m|27,
		byte(n>>56), byte(n>>48), byte(n>>40), byte(n>>32),
		byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

// MarshalCBOR implements cbor.Marshaler, writing a definite-length CBOR map
// whose pairs are in ascending key order.
func (m Map[K, V]) MarshalCBOR() ([]byte, error) {
	buf := appendCBORHead(nil, cborMajorMap, uint64(len(m.entries)))
	for i, e := range m.entries {
		kb, err := cbor.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("key[%d]: %w", i, err)
		}
		vb, err := cbor.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("value[%d]: %w", i, err)
		}
		buf = append(buf, kb...)
		buf = append(buf, vb...)
	}
	return buf, nil
}

var defaultDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// readCBORHead is the inverse of appendCBORHead. indefinite reports an item
// whose members run until a break byte.
func readCBORHead(data []byte) (major byte, n uint64, indefinite bool, rest []byte, err error) {
	if len(data) == 0 {
		return 0, 0, false, nil, io.ErrUnexpectedEOF
	}
	major, info := data[0]>>5, data[0]&0x1f
	data = data[1:]
	switch {
	case info < 24:
		return major, uint64(info), false, data, nil
	case info <= 27:
		size := 1 << (info - 24)
		if len(data) < size {
			return major, 0, false, nil, io.ErrUnexpectedEOF
		}
		for _, b := range data[:size] {
			n = n<<8 | uint64(b)
		}
		return major, n, false, data[size:], nil
	case info == 31 && (major == cborMajorArray || major == cborMajorMap):
		return major, 0, true, data, nil
	}
	return major, 0, false, nil, fmt.Errorf("malformed CBOR head 0x%02x", major<<5|info)
}

// members steps through the items of a definite or indefinite container.
// It reports whether the i-th member follows, consuming the break byte that
// ends an indefinite container.
func members(data []byte, i int, n uint64, indefinite bool) (bool, []byte, error) {
	if !indefinite {
		return uint64(i) < n, data, nil
	}
	if len(data) == 0 {
		return false, nil, io.ErrUnexpectedEOF
	}
	if data[0] == cborBreak {
		return false, data[1:], nil
	}
	return true, data, nil
}

// UnmarshalCBOR implements cbor.Unmarshaler with the cbor package's default
// decoding options. See UnmarshalCBORWith.
func (m *Map[K, V]) UnmarshalCBOR(data []byte) error {
	return m.UnmarshalCBORWith(data, defaultDecMode)
}

// UnmarshalCBORWith replaces the map's contents with a CBOR map, or an array
// of two-element [key, value] arrays, decoding keys and values with dm. Pairs
// may come in any order and repeat keys; the last value in wire order wins.
// CBOR null, or input that fails to decode, leaves the map unchanged.
func (m *Map[K, V]) UnmarshalCBORWith(data []byte, dm cbor.DecMode) error {
	if len(data) == 0 {
		return errors.New("empty CBOR input")
	}
	if data[0] == cborNull && len(data) == 1 {
		return nil
	}
	major, n, indefinite, rest, err := readCBORHead(data)
	if err != nil {
		return err
	}
	if major != cborMajorMap && major != cborMajorArray {
		return fmt.Errorf("cannot unmarshal CBOR major type %d into %T", major, m)
	}
	// every member takes at least one byte
	if !indefinite && n > uint64(len(rest)) {
		return fmt.Errorf("CBOR header claims %d members but only %d bytes follow", n, len(rest))
	}
	staged, err := m.staging(int(n))
	if err != nil {
		return err
	}
	for i := 0; ; i++ {
		var more bool
		if more, rest, err = members(rest, i, n, indefinite); err != nil {
			return err
		}
		if !more {
			break
		}
		openPair := false
		if major == cborMajorArray {
			if rest, openPair, err = pairHead(rest, i); err != nil {
				return err
			}
		}
		var k K
		var v V
		if rest, err = dm.UnmarshalFirst(rest, &k); err != nil {
			return fmt.Errorf("key[%d]: %w", i, err)
		}
		if rest, err = dm.UnmarshalFirst(rest, &v); err != nil {
			return fmt.Errorf("value[%d]: %w", i, err)
		}
		if openPair {
			if rest, err = pairEnd(rest, i); err != nil {
				return err
			}
		}
		staged.place(k, v)
	}
	if len(rest) != 0 {
		return fmt.Errorf("%d trailing bytes", len(rest))
	}
	m.commit(staged)
	return nil
}

// pairHead consumes the head of the i-th [key, value] element of an array
// and reports whether the pair is closed by a break byte.
func pairHead(data []byte, i int) (rest []byte, indefinite bool, err error) {
	major, n, indefinite, rest, err := readCBORHead(data)
	switch {
	case err != nil:
		return nil, false, fmt.Errorf("element %d: %w", i, err)
	case major != cborMajorArray:
		return nil, false, fmt.Errorf("element %d is CBOR major type %d, want a [key, value] array", i, major)
	case !indefinite && n != 2:
		return nil, false, fmt.Errorf("element %d has %d items, want 2", i, n)
	}
	return rest, indefinite, nil
}

// pairEnd consumes the break byte that closes an indefinite-length pair.
func pairEnd(data []byte, i int) ([]byte, error) {
	if len(data) == 0 || data[0] != cborBreak {
		return nil, fmt.Errorf("element %d has more than 2 items", i)
	}
	return data[1:], nil
}
