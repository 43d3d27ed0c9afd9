package executor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCommandNotFound indicates the program could not be located.
	ErrCommandNotFound = errors.New("command not found")

	// ErrProcessStart indicates the process could not be started.
	ErrProcessStart = errors.New("failed to start process")

	// ErrCommandFailed indicates the process exited unsuccessfully or was interrupted.
	ErrCommandFailed = errors.New("command failed")

	// ErrOutputRead indicates the process output could not be read or decoded.
	ErrOutputRead = errors.New("failed to read command output")
)

// CommandError describes a failed command. It unwraps to one of the
// package sentinels and to the underlying cause.
type CommandError struct {
	// Command is the full command line.
	Command string
	// Dir is the working directory, if one was set.
	Dir string
	// ExitCode is the exit status, or -1 if there was none.
	ExitCode int
	// Output is the combined stdout and stderr transcript.
	Output string
	// Kind is one of ErrCommandNotFound, ErrProcessStart, ErrCommandFailed or ErrOutputRead.
	Kind error
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Command)
	if e.Dir != "" {
		fmt.Fprintf(&b, " (in %s)", e.Dir)
	}
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, ": exit code %d", e.ExitCode)
	}
	if e.Cause != nil && e.ExitCode < 0 {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, "\n%s", out)
	}
	return b.String()
}

// Unwrap returns the sentinel kind and the cause.
func (e *CommandError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// AsCommandError extracts a CommandError from err's chain.
func AsCommandError(err error) (*CommandError, bool) {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
