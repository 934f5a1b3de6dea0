package hiera

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/hierafacts/notify"
)

// DefaultBridgeExecutable is the bridge command used when none is configured.
const DefaultBridgeExecutable = "hiera-json"

// Bridge resolves a whole batch with one process that uses the hiera
// library directly and prints typed JSON:
//
//	{"name": {"defined": true, "value": ...}, ...}
//
// The hierarchy is parsed once per batch instead of three times per
// variable, and the JSON carries real types so no disambiguation is needed.
//
// The bridge is invoked as
//
//	<exec> -c <config> [-f <scope file>] [-j <scope json>] -- <names...>
//
// where the bridge itself merges the inline scope over the scope file.
type Bridge struct {
	options
	configPath string
	id         string
}

// NewBridge creates a bridge backend for the hiera config at configPath.
// The executable defaults to DefaultBridgeExecutable.
func NewBridge(configPath string, opts ...Option) (*Bridge, error) {
	if configPath == "" {
		return nil, fmt.Errorf("%w: config path is required", ErrInvalidRequest)
	}

	o := defaultOptions()
	o.executable = []string{DefaultBridgeExecutable}
	for _, opt := range opts {
		opt(&o)
	}

	id, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	return &Bridge{options: o, configPath: configPath, id: id}, nil
}

// ID returns the bridge's correlation id.
func (b *Bridge) ID() string {
	return b.id
}

type bridgeEntry struct {
	Defined bool            `json:"defined"`
	Value   json.RawMessage `json:"value"`
}

// ResolveAll implements Resolver.
func (b *Bridge) ResolveAll(ctx context.Context, names []string) (*Batch, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	batch := newBatch(dedupe(names))
	for _, name := range batch.names {
		if name == "" {
			return batch, &VarError{Var: name, Stage: StageRequest, Err: fmt.Errorf("%w: empty variable name", ErrInvalidRequest)}
		}
	}
	b.notify(ctx, notify.Event{
		Type:     notify.EventBatchStarted,
		Message:  fmt.Sprintf("resolving %d variables through the bridge", len(batch.names)),
		Severity: notify.SeverityInfo,
	})

	args, err := b.commandLine(batch.names)
	if err != nil {
		return batch, err
	}

	start := time.Now()
	res, err := b.runner.Run(ctx, b.executable[0], args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return batch, fmt.Errorf("resolve batch: %w", ctxErr)
		}
		return b.failAll(ctx, batch, "", fmt.Errorf("%w: %w", ErrStoreInvocation, err))
	}
	b.logger.Debug("bridge query",
		"session", b.id,
		"vars", len(batch.names),
		"exit", res.ExitCode,
		"duration", time.Since(start),
	)
	if res.ExitCode != 0 {
		return b.failAll(ctx, batch, res.Stderr,
			fmt.Errorf("%w: bridge exited with status %d", ErrStoreInvocation, res.ExitCode))
	}

	var entries map[string]bridgeEntry
	if err := json.Unmarshal([]byte(res.Stdout), &entries); err != nil {
		return b.failAll(ctx, batch, res.Stderr, fmt.Errorf("%w: bridge output: %v", ErrDecode, err))
	}

	for _, name := range batch.names {
		r := Result{Name: name}
		entry, ok := entries[b.qualify(name)]
		switch {
		case !ok:
			r.Err = &VarError{Var: name, Stage: StageBridge, Err: fmt.Errorf("%w: bridge output has no entry for %q", ErrDecode, b.qualify(name))}
		case !entry.Defined:
			r.Value = Undefined()
		default:
			r.Value, r.Err = bridgeValue(name, entry.Value)
		}
		batch.set(r)
		b.notify(ctx, resultEvent(r))
	}

	if b.failFast {
		if failed := batch.Failed(); len(failed) > 0 {
			return batch, failed[0].Err
		}
	}
	b.notify(ctx, notify.Event{
		Type:     notify.EventBatchCompleted,
		Message:  fmt.Sprintf("resolved %d variables, %d failed", len(batch.names), len(batch.Failed())),
		Severity: notify.SeverityInfo,
	})
	return batch, nil
}

// qualify applies the namespace. The bridge looks names up through the
// library, where top-scope names carry no leading "::".
func (b *Bridge) qualify(name string) string {
	if b.namespace == "" {
		return name
	}
	return QualifiedName(b.namespace, name)
}

func (b *Bridge) commandLine(names []string) ([]string, error) {
	args := append([]string(nil), b.executable[1:]...)
	args = append(args, "-c", b.configPath)
	if b.scopeFile != "" {
		args = append(args, "-f", b.scopeFile)
	}
	if len(b.scope) > 0 {
		scope, err := json.Marshal(b.scope)
		if err != nil {
			return nil, fmt.Errorf("encode scope: %w", err)
		}
		args = append(args, "-j", string(scope))
	}
	args = append(args, "--")
	for _, name := range names {
		args = append(args, b.qualify(name))
	}
	return args, nil
}

// failAll attributes one bridge failure to every requested variable.
func (b *Bridge) failAll(ctx context.Context, batch *Batch, stderr string, err error) (*Batch, error) {
	for _, name := range batch.names {
		batch.set(Result{Name: name, Err: &VarError{Var: name, Stage: StageBridge, Stderr: stderr, Err: err}})
	}
	b.logger.Warn("bridge failed", "session", b.id, "error", err, "stderr", strings.TrimSpace(stderr))
	b.notify(ctx, notify.Event{
		Type:     notify.EventBatchFailed,
		Message:  err.Error(),
		Severity: notify.SeverityError,
	})
	if b.failFast {
		return batch, batch.Failed()[0].Err
	}
	return batch, nil
}

func (b *Bridge) notify(ctx context.Context, event notify.Event) {
	event.SessionID = b.id
	event.Timestamp = time.Now()
	if err := b.notifier.Notify(ctx, event); err != nil {
		b.logger.Warn("notification failed", "session", b.id, "event_type", event.Type, "error", err)
	}
}

// bridgeValue decodes one typed JSON value. JSON is YAML, so the same safe
// decoder yields the same Go types as the probing backend.
func bridgeValue(name string, raw json.RawMessage) (Value, error) {
	v, err := decodeAny(string(raw))
	if err != nil {
		return Value{}, &VarError{Var: name, Stage: StageBridge, Err: err}
	}
	switch val := v.(type) {
	case nil:
		return Undefined(), nil
	case map[string]any:
		return Mapping(val), nil
	case []any:
		return Sequence(val), nil
	default:
		return Scalar(val), nil
	}
}
