package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

// Value variants.
const (
	// KindNull is the absent value.
	KindNull ValueKind = iota

	// KindString holds a string.
	KindString

	// KindNumber holds a float64.
	KindNumber

	// KindBool holds a boolean.
	KindBool

	// KindArray holds an ordered list of Values.
	KindArray

	// KindMap holds string-keyed Values.
	KindMap
)

// Value is an explicit tagged union over the JSON-ish value space.
// It replaces runtime type inspection of "any" payloads with explicit
// variants and explicit decode/encode.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: KindNull}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Array returns an array Value.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: items}
}

// Map returns a map Value.
func Map(m map[string]Value) Value {
	return Value{kind: KindMap, obj: m}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull returns true for the null Value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the string variant.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the numeric variant.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsInt returns the numeric variant truncated to int.
func (v Value) AsInt() (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return int(v.num), true
}

// AsBool returns the boolean variant.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsArray returns the array variant.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// AsMap returns the map variant.
func (v Value) AsMap() (map[string]Value, bool) {
	return v.obj, v.kind == KindMap
}

// FromAny decodes a dynamically typed value (as produced by JSON or TOML
// decoding) into an explicit Value. Unknown dynamic types are rejected
// with ErrInvalidInput.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: bad number %q", ErrInvalidInput, t.String())
		}
		return Number(f), nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			items = append(items, v)
		}
		return Array(items...), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			m[k] = v
		}
		return Map(m), nil
	default:
		return Null(), fmt.Errorf("%w: unsupported value type %T", ErrInvalidInput, raw)
	}
}

// ToAny encodes the Value back into the dynamic representation expected by
// JSON and TOML encoders.
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		items := make([]any, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.ToAny()
		}
		return items
	case KindMap:
		m := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			m[k] = item.ToAny()
		}
		return m
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// Keys returns the sorted keys of a map Value, or nil for other variants.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
