package hiera

import (
	"errors"
	"strconv"
	"strings"
)

// Resolution errors. Every failure returned by this package wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	// ErrStoreInvocation indicates the store process could not be run, or
	// exited in a way the query protocol does not allow (for example a
	// scalar-mode failure after a sequence-mode success).
	ErrStoreInvocation = errors.New("store invocation failed")

	// ErrInconsistentStore indicates the query modes returned renderings
	// that contradict each other.
	ErrInconsistentStore = errors.New("inconsistent store output")

	// ErrAmbiguous indicates the renderings cannot tell a scalar from a
	// sequence. The ambiguity is inherent in the data; retrying will not help.
	ErrAmbiguous = errors.New("ambiguous variable type")

	// ErrDecode indicates store output that is not valid safe YAML or JSON of
	// the expected shape.
	ErrDecode = errors.New("invalid store output")

	// ErrInvalidRequest indicates a malformed request, such as an empty
	// variable name or a missing config file path.
	ErrInvalidRequest = errors.New("invalid request")
)

// Stage names the step of a resolution where a failure happened.
type Stage string

// Resolution stages.
const (
	StageRequest      Stage = "request"
	StageMapping      Stage = "mapping"
	StageSequence     Stage = "sequence"
	StageScalar       Stage = "scalar"
	StageDisambiguate Stage = "disambiguate"
	StageBridge       Stage = "bridge"
)

// VarError attributes a failure to one variable and the stage it failed in.
type VarError struct {
	Var    string // Variable name as requested (without namespace)
	Stage  Stage  // Stage that failed
	Stderr string // Store stderr, when a query produced it
	Err    error  // Wraps one of the package sentinels
}

func (e *VarError) Error() string {
	var sb strings.Builder
	sb.WriteString("resolve ")
	sb.WriteString(strconv.Quote(e.Var))
	sb.WriteString(" (")
	sb.WriteString(string(e.Stage))
	sb.WriteString("): ")
	sb.WriteString(e.Err.Error())
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		sb.WriteString(": ")
		sb.WriteString(stderr)
	}
	return sb.String()
}

func (e *VarError) Unwrap() error {
	return e.Err
}

// VarName returns the variable a failure belongs to, or "" if err was not
// produced by a resolution.
func VarName(err error) string {
	var ve *VarError
	if errors.As(err, &ve) {
		return ve.Var
	}
	return ""
}
