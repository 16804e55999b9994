package vecmap

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// objectKeys reports whether K can be written as a JSON object key, under
// the same rules encoding/json applies to builtin map keys.
func objectKeys[K any]() bool {
	kt := reflect.TypeOf((*K)(nil)).Elem()
	switch kt.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return kt.Implements(textMarshalerType) && reflect.PointerTo(kt).Implements(textUnmarshalerType)
}

func encodeKey[K any](k K) (string, error) {
	rv := reflect.ValueOf(&k).Elem()
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	if tm, ok := any(k).(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	}
	return "", fmt.Errorf("unsupported object key type %T", k)
}

func decodeKey[K any](s string) (K, error) {
	var k K
	if tu, ok := any(&k).(encoding.TextUnmarshaler); ok {
		err := tu.UnmarshalText([]byte(s))
		return k, err
	}
	rv := reflect.ValueOf(&k).Elem()
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(s)
		return k, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, rv.Type().Bits())
		if err != nil {
			return k, fmt.Errorf("object key %q: %w", s, err)
		}
		rv.SetInt(n)
		return k, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, rv.Type().Bits())
		if err != nil {
			return k, fmt.Errorf("object key %q: %w", s, err)
		}
		rv.SetUint(n)
		return k, nil
	}
	return k, fmt.Errorf("cannot use object key %q as %T", s, k)
}

// MarshalJSON writes the entries in ascending key order: as a JSON object
// when keys are strings, integers or text marshalers, and otherwise as an
// array of [key, value] pairs.
func (m Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if objectKeys[K]() {
		buf.WriteByte('{')
		for i, e := range m.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			ks, err := encodeKey(e.Key)
			if err != nil {
				return nil, fmt.Errorf("key[%d]: %w", i, err)
			}
			kb, err := json.Marshal(ks)
			if err != nil {
				return nil, fmt.Errorf("key[%d]: %w", i, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := json.Marshal(e.Value)
			if err != nil {
				return nil, fmt.Errorf("value[%d]: %w", i, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	buf.WriteByte('[')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		pair, err := json.Marshal([2]interface{}{e.Key, e.Value})
		if err != nil {
			return nil, fmt.Errorf("entry[%d]: %w", i, err)
		}
		buf.Write(pair)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the map's contents with a JSON object, or an array
// whose elements are [key, value] pairs or {"Key": k, "Value": v} objects.
// Members may come in any order and repeat keys; the last value wins. JSON
// null, or input that fails to decode, leaves the map unchanged.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return fmt.Errorf("cannot unmarshal JSON %v into %T", tok, m)
	}
	staged, err := m.staging(0)
	if err != nil {
		return err
	}
	for i := 0; dec.More(); i++ {
		var k K
		var v V
		if delim == '{' {
			tok, err = dec.Token()
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			k, err = decodeKey[K](tok.(string))
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			if err = dec.Decode(&v); err != nil {
				return fmt.Errorf("member %d value: %w", i, err)
			}
		} else {
			var raw json.RawMessage
			if err = dec.Decode(&raw); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			k, v, err = decodePair[K, V](raw)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		staged.place(k, v)
	}
	if _, err = dec.Token(); err != nil {
		return err
	}
	m.commit(staged)
	return nil
}

func decodePair[K, V any](raw json.RawMessage) (k K, v V, err error) {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return k, v, fmt.Errorf("empty entry")
	}
	switch raw[0] {
	case '[':
		var parts []json.RawMessage
		if err = json.Unmarshal(raw, &parts); err != nil {
			return k, v, err
		}
		if len(parts) != 2 {
			return k, v, fmt.Errorf("entry has %d elements, want 2", len(parts))
		}
		if err = json.Unmarshal(parts[0], &k); err != nil {
			return k, v, fmt.Errorf("key: %w", err)
		}
		if err = json.Unmarshal(parts[1], &v); err != nil {
			return k, v, fmt.Errorf("value: %w", err)
		}
		return k, v, nil
	case '{':
		var e Entry[K, V]
		if err = json.Unmarshal(raw, &e); err != nil {
			return k, v, err
		}
		return e.Key, e.Value, nil
	}
	return k, v, fmt.Errorf("entry is neither a pair nor an object: %s", raw)
}
