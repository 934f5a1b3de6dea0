package facts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/randalmurphal/hierafacts/hiera"
	"github.com/randalmurphal/hierafacts/testutil"
)

func newSession(t *testing.T, store *testutil.FakeStore) *hiera.Session {
	t.Helper()
	s, err := hiera.NewSession("hiera.yaml", hiera.WithRunner(store))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestResolve_PublishesDefinedValues(t *testing.T) {
	store := testutil.NewFakeStore().
		Hash("::db", "{port: 5432}").
		Array("::ntp", "[a, b]").Var("::ntp", "[a, b]").
		Array("::host", "[web01]").Var("::host", "web01")
	keys := []Key{
		{Hiera: "db", Fact: "db"},
		{Hiera: "ntp", Fact: "ntp"},
		{Hiera: "missing", Fact: "missing"},
		{Hiera: "host", Fact: "name"},
		{Hiera: "db", Fact: "database"},
	}

	got, err := Resolve(context.Background(), newSession(t, store), keys)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := map[string]any{
		"db":       map[string]any{"port": 5432},
		"database": map[string]any{"port": 5432},
		"ntp":      []any{"a", "b"},
		"name":     "web01",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("facts mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_LaterKeyWins(t *testing.T) {
	store := testutil.NewFakeStore().
		Array("::a", "[one]").Var("::a", "one").
		Array("::b", "[two]").Var("::b", "two")
	keys := []Key{{Hiera: "a", Fact: "x"}, {Hiera: "b", Fact: "x"}}

	got, err := Resolve(context.Background(), newSession(t, store), keys)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got["x"] != "two" {
		t.Errorf("x = %v, want two", got["x"])
	}
}

func TestResolve_FailureFailsLookup(t *testing.T) {
	store := testutil.NewFakeStore().
		Array("::bad", `["[]"]`).Var("::bad", "[]").
		Array("::good", "[ok]").Var("::good", "ok")

	_, err := Resolve(context.Background(), newSession(t, store),
		[]Key{{Hiera: "good", Fact: "good"}, {Hiera: "bad", Fact: "bad"}})
	if !errors.Is(err, hiera.ErrAmbiguous) {
		t.Errorf("error = %v, want ErrAmbiguous", err)
	}
}

func TestDocument_JSON(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"success", Success(map[string]any{"a": 1}), `{"ansible_facts":{"a":1},"changed":false}`},
		{"empty success", Success(nil), `{"ansible_facts":{},"changed":false}`},
		{"failure", Failure(errors.New("boom")), `{"changed":false,"failed":true,"msg":"boom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.doc)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("JSON = %s, want %s", data, tt.want)
			}
		})
	}
}
