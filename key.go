package vecmap

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/constraints"
)

// A Key has a sort order.
type Key[K any] interface {
	// Order returns -1 if this key sorts before the argument, 1 if after, and 0 if equal.
	Order(K) int
}

// OrderedCompare orders the builtin ordered types. NaNs sort before all
// other floats and compare equal to each other, so float keys stay totally
// ordered.
func OrderedCompare[K constraints.Ordered](a, b K) int {
	aNaN := isNaN(a)
	bNaN := isNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// isNaN reports whether x is a NaN without requiring a float type.
func isNaN[T constraints.Ordered](x T) bool {
	return x != x
}

func keyOrder[K Key[K]](a, b K) int {
	return a.Order(b)
}

// MarshaledCompare orders keys by the bytes the given marshaler produces for
// them. It suits key types with no natural order where any stable order will
// do. Marshal errors panic, as they leave the map without a total order.
func MarshaledCompare[K any](marshal func(interface{}) ([]byte, error)) func(a, b K) int {
	return func(a, b K) int {
		ab, err := marshal(a)
		if err != nil {
			panic(fmt.Sprintf("vecmap: marshal key %v: %v", a, err))
		}
		bb, err := marshal(b)
		if err != nil {
			panic(fmt.Sprintf("vecmap: marshal key %v: %v", b, err))
		}
		return bytes.Compare(ab, bb)
	}
}

// defaultCompare picks an order for K when the map was not given one: the
// key's own Order method, byte-wise for []byte, or the natural order of
// string, integer and float kinds. It returns nil for anything else.
func defaultCompare[K any]() func(a, b K) int {
	var zero K
	if _, ok := any(zero).(Key[K]); ok {
		return func(a, b K) int {
			return any(a).(Key[K]).Order(b)
		}
	}
	if _, ok := any(zero).([]byte); ok {
		return func(a, b K) int {
			return bytes.Compare(any(a).([]byte), any(b).([]byte))
		}
	}
	switch reflect.TypeOf(&zero).Elem().Kind() {
	case reflect.String:
		return func(a, b K) int {
			return strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b K) int {
			return OrderedCompare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b K) int {
			return OrderedCompare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
		}
	case reflect.Float32, reflect.Float64:
		return func(a, b K) int {
			return OrderedCompare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
		}
	}
	return nil
}
