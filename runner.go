package hierafacts

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// CommandResult is everything a finished process reported.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes external commands.
//
// Run returns a nil error whenever the process started and exited, even with
// a non-zero exit code; the exit code is part of the result. A non-nil error
// means the process could not be run at all or the context ended first.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the inherited environment.
	Env []string
}

// NewExecRunner creates an ExecRunner using the current directory.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, &CommandError{
			Command: name,
			Args:    args,
			Output:  strings.TrimSpace(result.Stderr),
			Err:     ctxErr,
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, &CommandError{Command: name, Args: args, Err: err}
	}

	return result, nil
}

// CommandError describes a command that could not be run to completion.
type CommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine renders the command and its arguments on one line for logs.
func (e *CommandError) CommandLine() string {
	return strings.Join(append([]string{e.Command}, e.Args...), " ")
}
