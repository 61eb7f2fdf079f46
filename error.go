package sheaf

import (
	"errors"
	"fmt"
	"strings"
)

// ResolveError is a fatal resolution or validation error. It carries the
// command context so [Registry.Run] can print help for the right command
// before signaling a non-zero exit.
type ResolveError struct {
	// Path is the command path that was resolved when the error occurred.
	Path []string

	// Command is the display form of the path, including the program name.
	Command string

	// Err is the underlying error.
	Err error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// HelpRequest is returned when resolution short-circuits into help output,
// either via the "help" verb or a --help/-h flag. It signals a successful,
// zero-status termination.
type HelpRequest struct {
	// Path is the command path help was requested for.
	Path []string
}

func (e *HelpRequest) Error() string {
	if len(e.Path) == 0 {
		return "help requested"
	}
	return fmt.Sprintf("help requested for %q", strings.Join(e.Path, " "))
}

// NoExecError is returned when a resolved command has no execution function
// and no children to show help for.
type NoExecError struct {
	Command string
}

func (e *NoExecError) Error() string {
	return fmt.Sprintf("command %q has no execution function", e.Command)
}

// ExitCode maps an error returned by [Registry.Run] to a process exit
// status: nil and help requests are 0, everything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var help *HelpRequest
	if errors.As(err, &help) {
		return 0
	}
	return 1
}
