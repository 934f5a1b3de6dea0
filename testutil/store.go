package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/hierafacts"
)

// Store query modes, as selected by the hiera command line flags.
const (
	ModeScalar   = "scalar"
	ModeSequence = "sequence"
	ModeMapping  = "mapping"
)

// StoreCall records one query a FakeStore answered.
type StoreCall struct {
	Config string
	Mode   string
	Name   string
	Scope  map[string]string
}

// FakeStore is a hierafacts.CommandRunner that behaves like the hiera
// command line tool with scripted answers.
//
// Answers are keyed by fully qualified name and mode. Unscripted mapping
// and sequence queries exit 1, so an unscripted name is undefined.
type FakeStore struct {
	// Delay makes every query block this long, or until the context ends.
	Delay time.Duration

	mu      sync.Mutex
	answers map[string]hierafacts.CommandResult
	calls   []StoreCall
}

// NewFakeStore creates an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{answers: make(map[string]hierafacts.CommandResult)}
}

// Answer scripts the raw reply to one (name, mode) query. A trailing
// newline is added to stdout like the real tool prints.
func (s *FakeStore) Answer(name, mode, stdout, stderr string, exitCode int) *FakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answerKey(name, mode)] = hierafacts.CommandResult{
		Stdout:   stdout + "\n",
		Stderr:   stderr,
		ExitCode: exitCode,
	}
	return s
}

// Hash scripts a successful mapping-mode reply.
func (s *FakeStore) Hash(name, text string) *FakeStore {
	return s.Answer(name, ModeMapping, text, "", 0)
}

// Array scripts a successful sequence-mode reply.
func (s *FakeStore) Array(name, text string) *FakeStore {
	return s.Answer(name, ModeSequence, text, "", 0)
}

// Var scripts a successful scalar-mode reply.
func (s *FakeStore) Var(name, text string) *FakeStore {
	return s.Answer(name, ModeScalar, text, "", 0)
}

// Fail scripts a failing reply for one mode.
func (s *FakeStore) Fail(name, mode, stderr string) *FakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answerKey(name, mode)] = hierafacts.CommandResult{Stderr: stderr, ExitCode: 1}
	return s
}

// Run implements hierafacts.CommandRunner.
func (s *FakeStore) Run(ctx context.Context, name string, args ...string) (hierafacts.CommandResult, error) {
	call, err := parseStoreArgs(args)
	if err != nil {
		return hierafacts.CommandResult{}, &hierafacts.CommandError{Command: name, Args: args, Err: err}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	answer, ok := s.answers[answerKey(call.Name, call.Mode)]
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return hierafacts.CommandResult{}, &hierafacts.CommandError{Command: name, Args: args, Err: ctx.Err()}
		}
	}
	if err := ctx.Err(); err != nil {
		return hierafacts.CommandResult{}, &hierafacts.CommandError{Command: name, Args: args, Err: err}
	}

	if !ok {
		return hierafacts.CommandResult{
			Stderr:   fmt.Sprintf("cannot resolve %s as %s", call.Name, call.Mode),
			ExitCode: 1,
		}, nil
	}
	return answer, nil
}

// Calls returns every query answered so far.
func (s *FakeStore) Calls() []StoreCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StoreCall(nil), s.calls...)
}

// Modes returns the modes queried for name, in order.
func (s *FakeStore) Modes(name string) []string {
	var modes []string
	for _, c := range s.Calls() {
		if c.Name == name {
			modes = append(modes, c.Mode)
		}
	}
	return modes
}

func answerKey(name, mode string) string {
	return mode + " " + name
}

// parseStoreArgs reads "-c <config> [-a|-h] <name> key=value...".
func parseStoreArgs(args []string) (StoreCall, error) {
	call := StoreCall{Mode: ModeScalar, Scope: map[string]string{}}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-c":
			if i+1 >= len(args) {
				return call, fmt.Errorf("-c needs a value")
			}
			i++
			call.Config = args[i]
		case arg == "-a":
			call.Mode = ModeSequence
		case arg == "-h":
			call.Mode = ModeMapping
		case call.Name == "":
			call.Name = arg
		default:
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return call, fmt.Errorf("unexpected argument %q", arg)
			}
			call.Scope[key] = value
		}
	}
	if call.Name == "" {
		return call, fmt.Errorf("no variable name")
	}
	return call, nil
}
