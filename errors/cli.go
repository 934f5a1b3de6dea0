package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/randalmurphal/hierafacts/hiera"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
type ErrorMessenger interface {
	// AmbiguousMessage is used when the store output cannot tell a scalar
	// from a sequence.
	AmbiguousMessage(varName string) (message, suggestion string)

	// InconsistentMessage is used when query modes contradict each other.
	InconsistentMessage(varName string) (message, suggestion string)

	// InvocationMessage is used when the store could not be run or broke
	// its query protocol.
	InvocationMessage(varName string) (message, suggestion string)

	// DecodeMessage is used for output that is not valid YAML or JSON.
	DecodeMessage(varName string) (message, suggestion string)

	// InvalidRequestMessage is used for malformed requests.
	InvalidRequestMessage() (message, suggestion string)

	// ExecutableNotFoundMessage is used when the store command is missing.
	ExecutableNotFoundMessage(executable string) (message, suggestion string)

	// ConfigNotFoundMessage is used when the hiera config file is missing.
	ConfigNotFoundMessage(path string) (message, suggestion string)

	// TimeoutMessage is used when a batch runs out of time.
	TimeoutMessage() (message, suggestion string)

	// BatchMessage is used when several variables failed.
	BatchMessage(failed int) (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) AmbiguousMessage(varName string) (string, string) {
	return fmt.Sprintf("Cannot tell whether %s is a string or an array.", varName),
		"The ambiguity is in the data itself; retrying will not help.\nA value like the string \"[]\" must be changed in hiera."
}

func (m DefaultMessenger) InconsistentMessage(varName string) (string, string) {
	return fmt.Sprintf("hiera returned contradictory answers for %s.", varName),
		"Check that every hierarchy level gives the variable the same type."
}

func (m DefaultMessenger) InvocationMessage(varName string) (string, string) {
	return fmt.Sprintf("Running hiera failed while resolving %s.", varName),
		"Check that:\n  - hiera_exec points at a working hiera\n  - The hiera config file is valid\n  - The scope has every variable the hierarchy needs"
}

func (m DefaultMessenger) DecodeMessage(varName string) (string, string) {
	return fmt.Sprintf("hiera printed output for %s that could not be parsed.", varName),
		"Run the same lookup by hand with --log-level debug to see the raw output."
}

func (m DefaultMessenger) InvalidRequestMessage() (string, string) {
	return "The request is invalid.",
		"Check the variable names, fact names, and config_file."
}

func (m DefaultMessenger) ExecutableNotFoundMessage(executable string) (string, string) {
	return fmt.Sprintf("Cannot run %s.", executable),
		"Install hiera, or set hiera_exec (or bridge_exec) with 'hierafacts config set'."
}

func (m DefaultMessenger) ConfigNotFoundMessage(path string) (string, string) {
	return fmt.Sprintf("hiera config %s does not exist.", path),
		"Pass the path to hiera.yaml with -c."
}

func (m DefaultMessenger) TimeoutMessage() (string, string) {
	return "Resolution did not finish in time.",
		"Raise the timeout setting, or resolve fewer variables per run."
}

func (m DefaultMessenger) BatchMessage(failed int) (string, string) {
	return fmt.Sprintf("%d variables failed to resolve.", failed),
		"Fix the first failure and run again; --fail-fast stops at the first one."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) ErrorMessenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// WrapResolveError turns a resolution failure into a CLIError with a
// message and suggestion for its kind. Errors of unknown kind are
// returned unchanged.
func WrapResolveError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	messenger := getMessenger(opts)

	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 1 {
		msg, suggestion := messenger.BatchMessage(len(merr.Errors))
		lines := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			lines[i] = "  - " + e.Error()
		}
		return &CLIError{
			Err:        errors.Join(ErrBatchFailed, err),
			Message:    msg,
			Details:    strings.Join(lines, "\n"),
			Suggestion: suggestion,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		msg, suggestion := messenger.TimeoutMessage()
		return &CLIError{Err: errors.Join(ErrTimeout, err), Message: msg, Suggestion: suggestion}
	}

	if errors.Is(err, exec.ErrNotFound) || (errors.Is(err, os.ErrNotExist) && errors.Is(err, hiera.ErrStoreInvocation)) {
		msg, suggestion := messenger.ExecutableNotFoundMessage(executableOf(err))
		return &CLIError{
			Err:        errors.Join(ErrExecutableNotFound, err),
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	name := hiera.VarName(err)
	var msg, suggestion string
	switch {
	case errors.Is(err, hiera.ErrAmbiguous):
		msg, suggestion = messenger.AmbiguousMessage(name)
	case errors.Is(err, hiera.ErrInconsistentStore):
		msg, suggestion = messenger.InconsistentMessage(name)
	case errors.Is(err, hiera.ErrStoreInvocation):
		msg, suggestion = messenger.InvocationMessage(name)
	case errors.Is(err, hiera.ErrDecode):
		msg, suggestion = messenger.DecodeMessage(name)
	case errors.Is(err, hiera.ErrInvalidRequest):
		msg, suggestion = messenger.InvalidRequestMessage()
	default:
		return err
	}
	return &CLIError{Err: err, Message: msg, Details: err.Error(), Suggestion: suggestion}
}

// NewConfigNotFoundError creates an error for a missing hiera config file.
func NewConfigNotFoundError(path string, opts ...Option) error {
	msg, suggestion := getMessenger(opts).ConfigNotFoundMessage(path)
	return &CLIError{
		Err:        ErrConfigNotFound,
		Message:    msg,
		Suggestion: suggestion,
	}
}

func executableOf(err error) string {
	var cmdErr interface{ CommandLine() string }
	if errors.As(err, &cmdErr) {
		if fields := strings.Fields(cmdErr.CommandLine()); len(fields) > 0 {
			return fields[0]
		}
	}
	return "the store executable"
}
