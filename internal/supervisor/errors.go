package supervisor

import (
	"fmt"
	"syscall"
)

// LaunchError reports an OS-level spawn failure. Fatal and never retried: a
// failed launch under fixed configuration fails identically on retry.
type LaunchError struct {
	Message string
	Err     error
}

// Error implements error interface
func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitStatusError carries the exit code the bootstrapper must propagate to
// the container runtime. Not a bootstrapper failure: the child's exit code
// is authoritative and passes through unchanged.
type ExitStatusError struct {
	Code   int
	Signal syscall.Signal // set when a termination signal produced the code
}

// Error implements error interface
func (e *ExitStatusError) Error() string {
	if e.Signal != 0 {
		return fmt.Sprintf("terminated by %s", SignalName(e.Signal))
	}
	return fmt.Sprintf("child exited with code %d", e.Code)
}
