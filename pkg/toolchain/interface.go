package toolchain

import (
	"context"
	"time"
)

// Command is one invocation of an external tool.
type Command struct {
	// Name is the executable, looked up in PATH if not absolute.
	Name string

	// Args are passed as-is (no shell).
	Args []string

	// Dir is the working directory.
	Dir string

	// Env entries (KEY=value) are added on top of the invoker's environment.
	Env []string

	// Timeout bounds the wall-clock runtime. Zero means no timeout beyond ctx.
	Timeout time.Duration
}

// Result is what came out of a finished (or killed) invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string

	// TimedOut is set when the command was killed for exceeding its Timeout.
	// ExitCode is meaningless if so.
	TimedOut bool

	Duration time.Duration
}

// Success is true if the tool ran to completion and exited 0.
func (r *Result) Success() bool {
	return r != nil && !r.TimedOut && r.ExitCode == 0
}

type Invoker interface {
	// Run blocks until the command exits or its timeout elapses. On timeout the
	// command and anything it spawned is killed before Run returns.
	//
	// An error is returned only if the command could not be run at all (ie.
	// the executable is missing) or ctx was cancelled by the caller. A non-zero
	// exit is reported in the Result, not as an error.
	Run(ctx context.Context, cmd *Command) (*Result, error)
}
