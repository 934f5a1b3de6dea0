package hiera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/singleflight"

	"github.com/randalmurphal/hierafacts"
	"github.com/randalmurphal/hierafacts/notify"
)

// DefaultExecutable is the store command used when none is configured.
const DefaultExecutable = "hiera"

// options holds the settings shared by Session and Bridge.
type options struct {
	executable  []string
	scope       map[string]string
	scopeFile   string
	namespace   string
	runner      hierafacts.CommandRunner
	logger      *slog.Logger
	notifier    notify.Notifier
	mergeArrays bool
	concurrency int
	failFast    bool
	timeout     time.Duration
}

func defaultOptions() options {
	return options{
		executable:  []string{DefaultExecutable},
		runner:      hierafacts.NewExecRunner(),
		logger:      slog.Default(),
		notifier:    notify.NopNotifier{},
		mergeArrays: true,
		concurrency: 1,
	}
}

// Option configures a Session or a Bridge.
type Option func(*options)

// WithExecutable sets the store command and any leading arguments, e.g.
// []string{"bundle", "exec", "hiera"}.
func WithExecutable(argv ...string) Option {
	return func(o *options) {
		if len(argv) > 0 {
			o.executable = append([]string(nil), argv...)
		}
	}
}

// WithScope sets the scope passed to every lookup. The map is copied.
func WithScope(scope map[string]string) Option {
	return func(o *options) {
		o.scope = make(map[string]string, len(scope))
		for k, v := range scope {
			o.scope[k] = v
		}
	}
}

// WithScopeFile sets a YAML scope file. Only the Bridge backend reads it
// itself; for a Session merge it into WithScope beforehand.
func WithScopeFile(path string) Option {
	return func(o *options) {
		o.scopeFile = path
	}
}

// WithNamespace sets the prefix joined to every variable name with "::".
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithRunner sets the command runner. Tests use this to script the store.
func WithRunner(r hierafacts.CommandRunner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNotifier sets where resolution events are sent.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithMergeArrays chooses what a confirmed sequence resolves to when the
// scalar-mode list is a strict prefix of the sequence-mode list. true (the
// default) returns the sequence-mode rendering, which merges every
// hierarchy level like mapping mode does; false returns the scalar-mode
// list, which is the highest-priority level only.
func WithMergeArrays(merge bool) Option {
	return func(o *options) {
		o.mergeArrays = merge
	}
}

// WithConcurrency sets how many variables a batch resolves at once.
// Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// WithFailFast stops a batch at the first variable that fails.
func WithFailFast(failFast bool) Option {
	return func(o *options) {
		o.failFast = failFast
	}
}

// WithTimeout bounds a whole batch. Zero means no bound beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// outcome is a memoized resolution.
type outcome struct {
	value Value
	err   error
}

// Session resolves variables against one hiera config, scope, and
// namespace. All three are fixed for the life of the session.
//
// Each variable is probed at most once per session: the first resolution
// decides its shape and later requests reuse it. Safe for concurrent use.
type Session struct {
	options
	configPath string
	id         string

	mu    sync.Mutex
	memo  map[string]outcome
	group singleflight.Group
}

// NewSession creates a session for the hiera config at configPath.
func NewSession(configPath string, opts ...Option) (*Session, error) {
	if configPath == "" {
		return nil, fmt.Errorf("%w: config path is required", ErrInvalidRequest)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id, err := nanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	return &Session{
		options:    o,
		configPath: configPath,
		id:         id,
		memo:       make(map[string]outcome),
	}, nil
}

// ID returns the session's correlation id, as seen in logs and events.
func (s *Session) ID() string {
	return s.id
}

// ConfigPath returns the hiera config file the session queries.
func (s *Session) ConfigPath() string {
	return s.configPath
}

// Namespace returns the session namespace.
func (s *Session) Namespace() string {
	return s.namespace
}

// Scope returns a copy of the session scope.
func (s *Session) Scope() map[string]string {
	out := make(map[string]string, len(s.scope))
	for k, v := range s.scope {
		out[k] = v
	}
	return out
}

// Resolve determines the shape of one variable and decodes it.
//
// The store is probed in mapping mode, then sequence mode, then scalar
// mode, stopping as soon as the shape is known. A variable that fails in
// sequence mode is undefined. Failures are *VarError values wrapping one of
// the package sentinels; context errors are returned as is.
func (s *Session) Resolve(ctx context.Context, name string) (Value, error) {
	if name == "" {
		return Value{}, &VarError{Var: name, Stage: StageRequest, Err: fmt.Errorf("%w: empty variable name", ErrInvalidRequest)}
	}

	if o, ok := s.cached(name); ok {
		return o.value, o.err
	}

	for {
		led := false
		v, _, _ := s.group.Do(name, func() (any, error) {
			led = true
			if o, ok := s.cached(name); ok {
				return o, nil
			}
			value, err := s.probe(ctx, name)
			o := outcome{value: value, err: err}
			if err == nil || !isContextErr(err) {
				s.mu.Lock()
				s.memo[name] = o
				s.mu.Unlock()
			}
			return o, nil
		})

		o := v.(outcome)
		// A joined flight may have been cut short by its leader's context.
		// Probe again under ours while it is still live.
		if !led && o.err != nil && isContextErr(o.err) && ctx.Err() == nil {
			continue
		}
		return o.value, o.err
	}
}

func (s *Session) cached(name string) (outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.memo[name]
	return o, ok
}

// probe runs the mapping -> sequence -> scalar -> disambiguate state
// machine for one variable.
func (s *Session) probe(ctx context.Context, name string) (Value, error) {
	var sequence, scalar QueryResult

	stage := StageMapping
	for {
		switch stage {
		case StageMapping:
			res, err := s.query(ctx, ModeMapping, name)
			if err != nil {
				return Value{}, err
			}
			if !res.OK() {
				stage = StageSequence
				continue
			}
			if res.Text == Sentinel {
				return Undefined(), nil
			}
			m, err := parseMapping(res.Text)
			if err != nil {
				return Value{}, &VarError{Var: name, Stage: StageMapping, Err: err}
			}
			return Mapping(m), nil

		case StageSequence:
			res, err := s.query(ctx, ModeSequence, name)
			if err != nil {
				return Value{}, err
			}
			if !res.OK() || res.Text == Sentinel {
				return Undefined(), nil
			}
			sequence = res
			stage = StageScalar

		case StageScalar:
			res, err := s.query(ctx, ModeScalar, name)
			if err != nil {
				return Value{}, err
			}
			if !res.OK() {
				return Value{}, &VarError{
					Var:    name,
					Stage:  StageScalar,
					Stderr: res.Stderr,
					Err:    fmt.Errorf("%w: variable resolved as a sequence but not as a scalar", ErrStoreInvocation),
				}
			}
			scalar = res
			stage = StageDisambiguate

		case StageDisambiguate:
			value, rule, err := disambiguate(sequence.Text, scalar.Text, s.mergeArrays)
			if err != nil {
				return Value{}, &VarError{Var: name, Stage: StageDisambiguate, Err: err}
			}
			s.logger.Debug("disambiguated",
				"session", s.id,
				"var", name,
				"kind", value.Kind().String(),
				"rule", rule,
			)
			return value, nil

		default:
			return Value{}, fmt.Errorf("unknown resolution stage %q", stage)
		}
	}
}
