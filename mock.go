package hierafacts

import (
	"context"
	"strings"
	"sync"
)

// MockResponse is a canned reply for MockRunner.
type MockResponse struct {
	Result CommandResult
	Err    error
}

// MockCall records one invocation seen by MockRunner.
type MockCall struct {
	Command string
	Args    []string
}

// MockRunner is a CommandRunner for tests. Responses are looked up by the
// full command line, then by command name, then the wildcard "*".
type MockRunner struct {
	// Responses maps "command arg1 arg2" (or just "command") to a reply.
	Responses map[string]MockResponse

	// DefaultResponse is used when nothing in Responses matches.
	DefaultResponse MockResponse

	// Calls lists every invocation in order.
	Calls []MockCall

	mu sync.Mutex
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockExpectation is returned by OnCommand to attach a reply.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand starts an expectation for an exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: commandKey(name, args)}
}

// OnAnyCommand starts an expectation matching every command.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: "*"}
}

// Return sets the reply for the expectation.
func (e *MockExpectation) Return(result CommandResult, err error) {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Result: result, Err: err}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Command: name, Args: append([]string(nil), args...)})

	if err := ctx.Err(); err != nil {
		return CommandResult{}, &CommandError{Command: name, Args: args, Err: err}
	}

	if resp, ok := m.Responses[commandKey(name, args)]; ok {
		return resp.Result, resp.Err
	}
	if resp, ok := m.Responses[name]; ok {
		return resp.Result, resp.Err
	}
	if resp, ok := m.Responses["*"]; ok {
		return resp.Result, resp.Err
	}
	return m.DefaultResponse.Result, m.DefaultResponse.Err
}

// WasCalled reports whether a call starting with name and args was made.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, call := range m.Calls {
		if call.Command != name {
			continue
		}
		if len(args) == 0 || (len(call.Args) >= len(args) && argsMatch(call.Args[:len(args)], args)) {
			return true
		}
	}
	return false
}

// CallCount returns how many times name was run.
func (m *MockRunner) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, call := range m.Calls {
		if call.Command == name {
			count++
		}
	}
	return count
}

func commandKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
