package facts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/hierafacts/hiera"
)

// Resolve resolves every key and publishes the defined ones. Any failed
// variable fails the whole lookup.
func Resolve(ctx context.Context, r hiera.Resolver, keys []Key) (map[string]any, error) {
	batch, err := r.ResolveAll(ctx, HieraNames(keys))
	if err != nil {
		return nil, err
	}
	if err := batch.Err(); err != nil {
		return nil, err
	}
	return Publish(keys, batch)
}

// Publish maps resolved variables to facts. Undefined variables are left
// out. When two keys share a fact name the later key wins.
func Publish(keys []Key, batch *hiera.Batch) (map[string]any, error) {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		r, ok := batch.Get(k.Hiera)
		if !ok {
			return nil, fmt.Errorf("no result for %q", k.Hiera)
		}
		if r.Err != nil {
			return nil, r.Err
		}
		if !r.Value.Defined() {
			continue
		}
		out[k.Fact] = r.Value.Interface()
	}
	return out, nil
}

// Document is the JSON written for a fact lookup: either the published
// facts or a failure message.
type Document struct {
	Changed bool
	Failed  bool
	Msg     string
	Facts   map[string]any
}

// Success returns a document publishing facts.
func Success(facts map[string]any) Document {
	if facts == nil {
		facts = map[string]any{}
	}
	return Document{Facts: facts}
}

// Failure returns a document reporting err.
func Failure(err error) Document {
	return Document{Failed: true, Msg: err.Error()}
}

// MarshalJSON writes {"changed": false, "ansible_facts": {...}} on success
// and {"changed": false, "failed": true, "msg": "..."} on failure.
func (d Document) MarshalJSON() ([]byte, error) {
	out := map[string]any{"changed": d.Changed}
	if d.Failed {
		out["failed"] = true
		out["msg"] = d.Msg
	} else {
		out["ansible_facts"] = d.Facts
	}
	return json.Marshal(out)
}
