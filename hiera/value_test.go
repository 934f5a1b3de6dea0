package hiera

import (
	"encoding/json"
	"testing"
)

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		value   Value
		kind    Kind
		defined bool
		json    string
	}{
		{Undefined(), KindUndefined, false, "null"},
		{Scalar("x"), KindScalar, true, `"x"`},
		{Scalar(nil), KindScalar, true, "null"},
		{Sequence(nil), KindSequence, true, "[]"},
		{Sequence([]any{1, "a"}), KindSequence, true, `[1,"a"]`},
		{Mapping(nil), KindMapping, true, "{}"},
		{Mapping(map[string]any{"a": map[any]any{1: true}}), KindMapping, true, `{"a":{"1":true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if tt.value.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.value.Kind(), tt.kind)
			}
			if tt.value.Defined() != tt.defined {
				t.Errorf("Defined() = %v, want %v", tt.value.Defined(), tt.defined)
			}
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("JSON = %s, want %s", data, tt.json)
			}
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	seq := Sequence([]any{"a"})
	if len(seq.Items()) != 1 || seq.Map() != nil {
		t.Errorf("sequence accessors: Items=%v Map=%v", seq.Items(), seq.Map())
	}

	m := Mapping(map[string]any{"k": "v"})
	if m.Map()["k"] != "v" || m.Items() != nil {
		t.Errorf("mapping accessors: Items=%v Map=%v", m.Items(), m.Map())
	}

	if got := Undefined().String(); got != "undefined" {
		t.Errorf("String() = %q", got)
	}
	if got := Scalar(3).String(); got != "scalar(3)" {
		t.Errorf("String() = %q", got)
	}
	if got := Kind(9).String(); got != "kind(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestValue_AccessorsReturnCopies(t *testing.T) {
	seq := Sequence([]any{"a", map[string]any{"k": "v"}})
	items := seq.Items()
	items[0] = "changed"
	items[1].(map[string]any)["k"] = "changed"

	if got := seq.Items(); got[0] != "a" || got[1].(map[string]any)["k"] != "v" {
		t.Errorf("Items() after mutation = %v", got)
	}

	m := Mapping(map[string]any{"hosts": []any{"a"}})
	m.Map()["hosts"].([]any)[0] = "changed"
	m.Interface().(map[string]any)["extra"] = 1

	if got := m.Map(); len(got) != 1 || got["hosts"].([]any)[0] != "a" {
		t.Errorf("Map() after mutation = %v", got)
	}
}

func TestValue_ConstructorsLeaveInputAlone(t *testing.T) {
	nested := map[any]any{1: "one"}
	in := map[string]any{"n": nested}
	list := []any{nested}

	m := Mapping(in)
	s := Sequence(list)

	if _, ok := in["n"].(map[any]any); !ok {
		t.Errorf("Mapping rewrote its input: %#v", in)
	}
	if _, ok := list[0].(map[any]any); !ok {
		t.Errorf("Sequence rewrote its input: %#v", list)
	}
	if m.Map()["n"].(map[string]any)["1"] != "one" {
		t.Errorf("Mapping payload = %v", m.Map())
	}
	if s.Items()[0].(map[string]any)["1"] != "one" {
		t.Errorf("Sequence payload = %v", s.Items())
	}

	in["late"] = true
	if _, ok := m.Map()["late"]; ok {
		t.Error("Mapping shares its input map")
	}
}
