package hiera

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sentinel is the store's textual marker for an absent value.
const Sentinel = "nil"

// Mode selects how the store renders a lookup.
type Mode string

// Query modes.
const (
	ModeScalar   Mode = "scalar"
	ModeSequence Mode = "sequence"
	ModeMapping  Mode = "mapping"
)

// flag returns the store command line flag selecting the mode.
func (m Mode) flag() string {
	switch m {
	case ModeSequence:
		return "-a"
	case ModeMapping:
		return "-h"
	default:
		return ""
	}
}

// QueryResult is the outcome of one store query. Text has its trailing
// newline removed.
type QueryResult struct {
	Text       string
	Stderr     string
	ExitStatus int
}

// OK reports whether the store accepted the query mode.
func (r QueryResult) OK() bool {
	return r.ExitStatus == 0
}

// QualifiedName joins a namespace and a variable name with "::". An empty
// namespace yields a top-scope name such as "::environment".
func QualifiedName(namespace, name string) string {
	return namespace + "::" + name
}

// commandLine builds the argument list for one query, not including the
// executable itself. Scope assignments are appended sorted by key.
func commandLine(configPath string, mode Mode, qualifiedName string, scope map[string]string) []string {
	args := []string{"-c", configPath}
	if flag := mode.flag(); flag != "" {
		args = append(args, flag)
	}
	args = append(args, qualifiedName)
	for _, key := range sortedKeys(scope) {
		args = append(args, key+"="+scope[key])
	}
	return args
}

// query runs one store lookup. Only failures to run the store at all are
// returned as errors; a non-zero exit is part of the result.
func (s *Session) query(ctx context.Context, mode Mode, name string) (QueryResult, error) {
	qualified := QualifiedName(s.namespace, name)
	args := append(append([]string(nil), s.executable[1:]...),
		commandLine(s.configPath, mode, qualified, s.scope)...)

	start := time.Now()
	res, err := s.runner.Run(ctx, s.executable[0], args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return QueryResult{}, ctxErr
		}
		return QueryResult{}, &VarError{
			Var:   name,
			Stage: stageOf(mode),
			Err:   fmt.Errorf("%w: %w", ErrStoreInvocation, err),
		}
	}

	result := QueryResult{
		Text:       strings.TrimSuffix(res.Stdout, "\n"),
		Stderr:     res.Stderr,
		ExitStatus: res.ExitCode,
	}
	s.logger.Debug("store query",
		"session", s.id,
		"var", qualified,
		"mode", string(mode),
		"exit", result.ExitStatus,
		"duration", time.Since(start),
	)
	return result, nil
}

func stageOf(mode Mode) Stage {
	switch mode {
	case ModeMapping:
		return StageMapping
	case ModeSequence:
		return StageSequence
	default:
		return StageScalar
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
