package hiera

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisambiguate(t *testing.T) {
	tests := []struct {
		name        string
		sequence    string
		scalar      string
		mergeArrays bool
		want        Value
		rule        string
		wantErr     error
	}{
		{
			name:     "plain string",
			sequence: `["ntp.example.com"]`,
			scalar:   "ntp.example.com",
			want:     Scalar("ntp.example.com"),
			rule:     "first-element-text",
		},
		{
			name:     "integer",
			sequence: "[5432]",
			scalar:   "5432",
			want:     Scalar(5432),
			rule:     "first-element-text",
		},
		{
			name:     "boolean",
			sequence: "[true]",
			scalar:   "true",
			want:     Scalar(true),
			rule:     "first-element-text",
		},
		{
			name:     "empty string",
			sequence: `[""]`,
			scalar:   "",
			want:     Scalar(""),
			rule:     "first-element-text",
		},
		{
			name:     "string that looks like a list",
			sequence: `["[a, b"]`,
			scalar:   "[a, b",
			want:     Scalar("[a, b"),
			rule:     "first-element-text",
		},
		{
			name:     "empty scalar with empty sequence",
			sequence: "[]",
			scalar:   "",
			want:     Sequence(nil),
			rule:     "empty-collection",
		},
		{
			name:     "true empty sequence",
			sequence: "[]",
			scalar:   "[]",
			want:     Sequence(nil),
			rule:     "empty-collection",
		},
		{
			name:     "empty list literal with non-string first element",
			sequence: "[[]]",
			scalar:   "[]",
			want:     Sequence(nil),
			rule:     "empty-collection",
		},
		{
			name:     "literal brackets string is ambiguous",
			sequence: `["[]"]`,
			scalar:   "[]",
			wantErr:  ErrAmbiguous,
		},
		{
			name:     "empty scalar with nonempty sequence",
			sequence: `["a"]`,
			scalar:   "",
			wantErr:  ErrInconsistentStore,
		},
		{
			name:     "sequence confirmed by identical list",
			sequence: `["a", "b"]`,
			scalar:   `["a", "b"]`,
			want:     Sequence([]any{"a", "b"}),
			rule:     "sequence-prefix",
		},
		{
			name:        "merged sequence returns sequence-mode list",
			sequence:    `["a", "b", "c"]`,
			scalar:      `["a", "b"]`,
			mergeArrays: true,
			want:        Sequence([]any{"a", "b", "c"}),
			rule:        "sequence-prefix",
		},
		{
			name:        "unmerged sequence returns scalar-mode list",
			sequence:    `["a", "b", "c"]`,
			scalar:      `["a", "b"]`,
			mergeArrays: false,
			want:        Sequence([]any{"a", "b"}),
			rule:        "sequence-prefix",
		},
		{
			name:     "nested sequence",
			sequence: `[[1, 2], {k: v}]`,
			scalar:   `[[1, 2], {k: v}]`,
			want:     Sequence([]any{[]any{1, 2}, map[string]any{"k": "v"}}),
			rule:     "sequence-prefix",
		},
		{
			name:     "nonempty list against empty sequence",
			sequence: "[]",
			scalar:   "[1]",
			wantErr:  ErrInconsistentStore,
		},
		{
			name:     "scalar against empty sequence",
			sequence: "[]",
			scalar:   "hello",
			wantErr:  ErrInconsistentStore,
		},
		{
			name:     "first element decodes to scalar form",
			sequence: `['x: 1']`,
			scalar:   "x:  1",
			want:     Scalar("x: 1"),
			rule:     "first-element-decode",
		},
		{
			name:     "no rule applies",
			sequence: `["a", "b"]`,
			scalar:   "b",
			wantErr:  ErrAmbiguous,
		},
		{
			name:     "list that is not a prefix",
			sequence: `["x", "y"]`,
			scalar:   `["z"]`,
			wantErr:  ErrAmbiguous,
		},
		{
			name:     "sequence output is not a list",
			sequence: "{a: 1}",
			scalar:   "x",
			wantErr:  ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule, err := disambiguate(tt.sequence, tt.scalar, tt.mergeArrays)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want.Interface(), got.Interface()); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
			if got.Kind() != tt.want.Kind() {
				t.Errorf("kind = %v, want %v", got.Kind(), tt.want.Kind())
			}
			if rule != tt.rule {
				t.Errorf("rule = %q, want %q", rule, tt.rule)
			}
		})
	}
}

// A scalar whose text is not itself a list literal never comes back as a
// sequence, whatever element shapes the sequence rendering has.
func TestDisambiguate_ScalarRoundTrip(t *testing.T) {
	scalars := []string{"web01", "8080", "3.14", "false", "hello world", "~/path", "a,b"}
	for _, text := range scalars {
		t.Run(text, func(t *testing.T) {
			got, _, err := disambiguate(`["`+text+`"]`, text, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != KindScalar {
				t.Errorf("kind = %v, want scalar", got.Kind())
			}
		})
	}
}
