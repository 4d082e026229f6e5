package toolchain

import (
	"context"
	stderrs "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

const (
	defMaxOutput = 4 << 20 // per stream
	waitDelay    = 5 * time.Second
)

// Local runs commands as child processes of this one.
//
// Each command is started in its own process group so that on timeout the
// whole tree (cargo, rustc, build scripts ..) can be killed at once.
type Local struct {
	// MaxOutput caps how many bytes of stdout & stderr (each) we keep.
	MaxOutput int
}

var _ Invoker = (*Local)(nil)

func NewLocal() *Local {
	return &Local{MaxOutput: defMaxOutput}
}

func (l *Local) Run(ctx context.Context, c *Command) (*Result, error) {
	if c == nil || c.Name == "" {
		return nil, fmt.Errorf("%w no command", errors.ErrToolStart)
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	stdout := newCappedBuffer(l.MaxOutput)
	stderr := newCappedBuffer(l.MaxOutput)

	// nb. not exec.CommandContext; that kills only the direct child
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errors.ErrToolStart, c.Name, err)
	}
	slog.Debug("Started tool", "cmd", c.Name, "pid", cmd.Process.Pid, "dir", c.Dir)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	killed := false
	select {
	case waitErr = <-done:
		// the leader exited; anything it left behind in the group goes too
		killProcessGroup(cmd)
	case <-runCtx.Done():
		killed = true
		killProcessGroup(cmd)
		waitErr = <-done
	}

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if killed {
		if ctx.Err() != nil {
			// the caller gave up, rather than our timeout firing
			return nil, ctx.Err()
		}
		slog.Warn("Tool timed out", "cmd", c.Name, "timeout", c.Timeout)
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !stderrs.As(waitErr, &exitErr) && !stderrs.Is(waitErr, exec.ErrWaitDelay) {
			return nil, fmt.Errorf("%w %s: %v", errors.ErrToolStart, c.Name, waitErr)
		}
	}
	result.ExitCode = cmd.ProcessState.ExitCode()
	return result, nil
}
