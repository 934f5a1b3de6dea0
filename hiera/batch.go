package hiera

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/hierafacts/notify"
)

// Resolver resolves a batch of variable names. Session and Bridge both
// implement it.
type Resolver interface {
	ResolveAll(ctx context.Context, names []string) (*Batch, error)
}

var (
	_ Resolver = (*Session)(nil)
	_ Resolver = (*Bridge)(nil)
)

// Result is the outcome for one variable of a batch.
type Result struct {
	Name  string
	Value Value
	Err   error
}

// Defined reports whether the variable resolved to a defined value.
func (r Result) Defined() bool {
	return r.Err == nil && r.Value.Defined()
}

// MarshalJSON encodes the result as {"defined": bool, "value": any}, plus
// "error" for failed variables.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Defined bool   `json:"defined"`
		Value   Value  `json:"value"`
		Error   string `json:"error,omitempty"`
	}{Defined: r.Defined(), Value: r.Value}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Batch holds the results of one ResolveAll call in request order. Each
// distinct name appears once.
type Batch struct {
	names   []string
	results map[string]Result
}

func newBatch(names []string) *Batch {
	return &Batch{
		names:   names,
		results: make(map[string]Result, len(names)),
	}
}

func (b *Batch) set(r Result) {
	b.results[r.Name] = r
}

// Names returns the distinct requested names in request order.
func (b *Batch) Names() []string {
	return append([]string(nil), b.names...)
}

// Get returns the result for name.
func (b *Batch) Get(name string) (Result, bool) {
	r, ok := b.results[name]
	return r, ok
}

// Results returns every result in request order. Names that were never
// attempted (after a fail-fast stop or cancellation) are omitted.
func (b *Batch) Results() []Result {
	out := make([]Result, 0, len(b.names))
	for _, name := range b.names {
		if r, ok := b.results[name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the results that carry an error, in request order.
func (b *Batch) Failed() []Result {
	var out []Result
	for _, r := range b.Results() {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Err folds every per-variable failure into one error, or returns nil.
func (b *Batch) Err() error {
	var merr *multierror.Error
	for _, r := range b.Failed() {
		merr = multierror.Append(merr, r.Err)
	}
	return merr.ErrorOrNil()
}

// MarshalJSON encodes the batch as {name: result}.
func (b *Batch) MarshalJSON() ([]byte, error) {
	out := make(map[string]Result, len(b.results))
	for name, r := range b.results {
		out[name] = r
	}
	return json.Marshal(out)
}

// ResolveAll resolves every name independently. A failure on one variable
// is recorded in its Result and does not affect the others, unless the
// session is fail-fast, in which case the first failure is also returned.
// Cancellation or timeout of ctx is returned as a single terminal error
// alongside the partial batch.
func (s *Session) ResolveAll(ctx context.Context, names []string) (*Batch, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	batch := newBatch(dedupe(names))
	results := make([]Result, len(batch.names))
	attempted := make([]bool, len(batch.names))

	s.notify(ctx, notify.Event{
		Type:     notify.EventBatchStarted,
		Message:  fmt.Sprintf("resolving %d variables", len(batch.names)),
		Severity: notify.SeverityInfo,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range batch.names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := s.Resolve(gctx, name)
			results[i] = Result{Name: name, Value: value, Err: err}
			attempted[i] = true
			s.notifyResult(gctx, results[i])
			if err != nil && (s.failFast || isContextErr(err)) {
				return err
			}
			return nil
		})
	}
	groupErr := g.Wait()

	for i, r := range results {
		// Variables interrupted by cancellation have no outcome of their own.
		if attempted[i] && (r.Err == nil || !isContextErr(r.Err)) {
			batch.set(r)
		}
	}

	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("resolve batch: %w", err)
		s.notify(context.WithoutCancel(ctx), notify.Event{
			Type:     notify.EventBatchFailed,
			Message:  err.Error(),
			Severity: notify.SeverityError,
		})
		return batch, err
	}
	if groupErr != nil {
		s.notify(ctx, notify.Event{
			Type:     notify.EventBatchFailed,
			Var:      VarName(groupErr),
			Message:  groupErr.Error(),
			Severity: notify.SeverityError,
		})
		return batch, groupErr
	}

	s.notify(ctx, notify.Event{
		Type:     notify.EventBatchCompleted,
		Message:  fmt.Sprintf("resolved %d variables, %d failed", len(batch.names), len(batch.Failed())),
		Severity: notify.SeverityInfo,
	})
	return batch, nil
}

func (s *Session) notifyResult(ctx context.Context, r Result) {
	if r.Err != nil {
		if isContextErr(r.Err) {
			return
		}
		s.logger.Warn("variable failed", "session", s.id, "var", r.Name, "error", r.Err)
	}
	s.notify(ctx, resultEvent(r))
}

// resultEvent describes the outcome of one variable.
func resultEvent(r Result) notify.Event {
	event := notify.Event{Var: r.Name, Kind: r.Value.Kind().String()}
	switch {
	case r.Err != nil:
		event.Type = notify.EventVarFailed
		event.Message = r.Err.Error()
		event.Severity = notify.SeverityError
	case !r.Value.Defined():
		event.Type = notify.EventVarUndefined
		event.Message = r.Name + " is undefined"
		event.Severity = notify.SeverityInfo
	default:
		event.Type = notify.EventVarResolved
		event.Message = r.Name + " resolved as " + r.Value.Kind().String()
		event.Severity = notify.SeverityInfo
	}
	return event
}

// notify sends an event stamped with the session id. Notification failures
// are logged, never returned.
func (s *Session) notify(ctx context.Context, event notify.Event) {
	event.SessionID = s.id
	event.Timestamp = time.Now()
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("notification failed", "session", s.id, "event_type", event.Type, "error", err)
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
