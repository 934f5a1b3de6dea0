package hiera

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []any
		wantErr bool
	}{
		{name: "empty output", text: "", want: nil},
		{name: "null", text: "~", want: nil},
		{name: "empty list", text: "[]", want: []any{}},
		{name: "flow list", text: `["a", 1, true]`, want: []any{"a", 1, true}},
		{name: "block list", text: "- a\n- b\n", want: []any{"a", "b"}},
		{name: "nested", text: "[{a: [1]}]", want: []any{map[string]any{"a": []any{1}}}},
		{name: "scalar", text: "hello", wantErr: true},
		{name: "mapping", text: "{a: 1}", wantErr: true},
		{name: "invalid yaml", text: "[a, b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseList(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrDecode) {
					t.Fatalf("error = %v, want ErrDecode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tt.want) == 0 {
				if got.len() != 0 {
					t.Errorf("len = %d, want 0", got.len())
				}
				return
			}
			if diff := cmp.Diff(tt.want, got.values); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListForm_ElementText(t *testing.T) {
	list, err := parseList(`["0x10", 'yes', [1], "[]"]`)
	if err != nil {
		t.Fatalf("parseList: %v", err)
	}

	if text, ok := list.elementText(0); !ok || text != "0x10" {
		t.Errorf("elementText(0) = %q, %v", text, ok)
	}
	if text, ok := list.elementText(1); !ok || text != "yes" {
		t.Errorf("elementText(1) = %q, %v", text, ok)
	}
	if _, ok := list.elementText(2); ok {
		t.Error("elementText(2) should not report a nested list")
	}
	if _, ok := list.elementText(9); ok {
		t.Error("elementText past the end should report false")
	}
	if s, ok := list.elementString(3); !ok || s != "[]" {
		t.Errorf("elementString(3) = %q, %v", s, ok)
	}
	if _, ok := list.elementString(2); ok {
		t.Error("elementString(2) should not report a nested list")
	}
}

func TestParseMapping(t *testing.T) {
	got, err := parseMapping("{port: 5432, hosts: [a, b], 1: one}")
	if err != nil {
		t.Fatalf("parseMapping: %v", err)
	}
	want := map[string]any{"port": 5432, "hosts": []any{"a", "b"}, "1": "one"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapping mismatch (-want +got):\n%s", diff)
	}

	empty, err := parseMapping("")
	if err != nil || len(empty) != 0 || empty == nil {
		t.Errorf("parseMapping(\"\") = %v, %v; want empty map", empty, err)
	}

	if _, err := parseMapping("[1, 2]"); !errors.Is(err, ErrDecode) {
		t.Errorf("list input error = %v, want ErrDecode", err)
	}
}

func TestDecodeScalar(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"", ""},
		{"hello", "hello"},
		{"42", 42},
		{"2.5", 2.5},
		{"true", true},
		{"~", nil},
		{"[a, b]", "[a, b]"},
		{"{a: 1}", "{a: 1}"},
		{"[unterminated", "[unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, decodeScalar(tt.text)); diff != "" {
				t.Errorf("decodeScalar(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestDecodeAny_Normalizes(t *testing.T) {
	got, err := decodeAny("{outer: {1: a, true: b}}")
	if err != nil {
		t.Fatalf("decodeAny: %v", err)
	}
	want := map[string]any{"outer": map[string]any{"1": "a", "true": "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
