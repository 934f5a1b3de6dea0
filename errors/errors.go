package errors

import "errors"

// CLI-level errors with actionable guidance. Resolution failures keep the
// hiera package sentinels; these cover what happens around them.
var (
	// ErrConfigNotFound indicates the hiera config file does not exist.
	ErrConfigNotFound = errors.New("hiera config not found")

	// ErrExecutableNotFound indicates the store command is not installed
	// or not on PATH.
	ErrExecutableNotFound = errors.New("store executable not found")

	// ErrTimeout indicates the batch did not finish in time.
	ErrTimeout = errors.New("resolution timed out")

	// ErrBatchFailed indicates more than one variable failed.
	ErrBatchFailed = errors.New("variables failed to resolve")
)
