package hiera

import (
	"encoding/json"
	"fmt"
)

// Kind is the shape of a resolved variable.
type Kind int

// Variable kinds.
const (
	KindUndefined Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a resolved variable: undefined, a scalar, a sequence, or a
// mapping. Payloads are plain Go values as produced by a safe YAML decode
// (string, int, float64, bool, nil, []any, map[string]any).
type Value struct {
	kind Kind
	data any
}

// Undefined returns the value of a variable the store does not define.
func Undefined() Value {
	return Value{kind: KindUndefined}
}

// Scalar wraps a scalar payload.
func Scalar(v any) Value {
	return Value{kind: KindScalar, data: normalize(v)}
}

// Sequence wraps a sequence payload. A nil slice is an empty sequence.
func Sequence(items []any) Value {
	if items == nil {
		items = []any{}
	}
	return Value{kind: KindSequence, data: normalize(items)}
}

// Mapping wraps a mapping payload. A nil map is an empty mapping.
func Mapping(m map[string]any) Value {
	if m == nil {
		m = map[string]any{}
	}
	return Value{kind: KindMapping, data: normalize(m)}
}

// Kind returns the variable's shape.
func (v Value) Kind() Kind {
	return v.kind
}

// Defined reports whether the store defines the variable.
func (v Value) Defined() bool {
	return v.kind != KindUndefined
}

// Interface returns a copy of the payload; nil for an undefined value.
func (v Value) Interface() any {
	return normalize(v.data)
}

// Items returns a copy of a sequence payload, or nil for any other kind.
func (v Value) Items() []any {
	items, _ := normalize(v.data).([]any)
	return items
}

// Map returns a copy of a mapping payload, or nil for any other kind.
func (v Value) Map() map[string]any {
	m, _ := normalize(v.data).(map[string]any)
	return m
}

func (v Value) String() string {
	if v.kind == KindUndefined {
		return "undefined"
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.data)
}

// MarshalJSON encodes the payload; an undefined value encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.data)
}

// normalize returns a deep copy of v with nested map[any]any (produced by
// YAML mappings with non-string keys) rewritten into map[string]any, so
// every payload is JSON-encodable. The input is never modified.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
