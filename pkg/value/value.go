// Package value defines the dynamic JSON value every other package in this
// module passes around instead of map[string]any. BRP speaks JSON end to
// end; a strongly-typed tagged sum reads cleanly at the call sites that
// build and transform component payloads, and keeps object key order —
// which matters for deterministic root examples — explicit rather than
// incidental.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a dynamic JSON value: null, bool, number, string, array, or
// an order-preserving object.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *orderedmap.OrderedMap[string, Value]
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Int wraps an integer as a JSON number.
func Int(n int) Value { return Number(float64(n)) }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array builds an array value from the given elements.
func Array(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// Object returns a new, empty object value.
func Object() Value {
	return Value{kind: KindObject, obj: orderedmap.New[string, Value]()}
}

// IsNull reports whether v is the null value (or the zero Value).
func (v Value) IsNull() bool { return v.kind == KindNull }

// Kind reports v's variant tag.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload; ok is false if v is not a bool.
func (v Value) Bool() (b bool, ok bool) { return v.b, v.kind == KindBool }

// Number returns the numeric payload; ok is false if v is not a number.
func (v Value) Number() (n float64, ok bool) { return v.n, v.kind == KindNumber }

// Str returns the string payload; ok is false if v is not a string.
func (v Value) Str() (s string, ok bool) { return v.s, v.kind == KindString }

// Len returns the element/member count for array and object kinds, else 0.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		if v.obj == nil {
			return 0
		}
		return v.obj.Len()
	default:
		return 0
	}
}

// Index returns the i'th array element. Panics if v is not an array or i
// is out of range — callers in this module only index arrays they built.
func (v Value) Index(i int) Value { return v.arr[i] }

// Elements returns a copy of the backing slice for an array value, or nil.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp
}

// Get returns a named object member; ok is false if v is not an object or
// the key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject || v.obj == nil {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Set inserts or overwrites a named member on an object value in place and
// returns v for chaining. Panics if v is not an object.
func (v Value) Set(key string, val Value) Value {
	if v.kind != KindObject {
		panic(fmt.Sprintf("value: Set on non-object kind %s", v.kind))
	}
	v.obj.Set(key, val)
	return v
}

// Keys returns the object's member names in insertion order, or nil.
func (v Value) Keys() []string {
	if v.kind != KindObject || v.obj == nil {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Walk calls fn for each member of an object value in insertion order.
func (v Value) Walk(fn func(key string, val Value)) {
	if v.kind != KindObject || v.obj == nil {
		return
	}
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: out}
	case KindObject:
		out := Object()
		v.Walk(func(k string, val Value) { out.Set(k, val.Clone()) })
		return out
	default:
		return v
	}
}

// Equal reports deep structural equality, treating object key order as
// significant (two objects with the same members in different orders are
// NOT equal) since emitted root examples are order-sensitive for display
// and idempotence tests compare byte-identical output.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ak, bk := a.Keys(), b.Keys()
		if len(ak) != len(bk) {
			return false
		}
		for i, k := range ak {
			if bk[i] != k {
				return false
			}
			av, _ := a.Get(k)
			bv, _ := b.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		first := true
		v.Walk(func(k string, val Value) {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			keyData, _ := json.Marshal(k)
			buf.Write(keyData)
			buf.WriteByte(':')
			data, err := val.MarshalJSON()
			if err != nil {
				data = []byte("null")
			}
			buf.Write(data)
		})
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. It walks the token stream
// directly (rather than decoding through map[string]interface{}, which
// discards member order) so object member order survives the round trip.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: numeric token %q: %w", t.String(), err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := make([]Value, 0)
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return Value{kind: KindArray, arr: arr}, nil
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: expected object key, got %T", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return obj, nil
		default:
			return Value{}, fmt.Errorf("value: unexpected delimiter %q", t)
		}
	default:
		return Value{}, fmt.Errorf("value: unexpected token type %T", tok)
	}
}

// FromJSON parses a JSON document into a Value.
func FromJSON(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, fmt.Errorf("parse json value: %w", err)
	}
	return v, nil
}
