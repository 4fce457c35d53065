package adapter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// CommandResult is the raw outcome of one shell command that ran to
// completion. A non-zero exit code is a legitimate result, not an error.
type CommandResult struct {
	Output   string
	ExitCode int
}

// CommandRunner abstracts shell command execution for setup and test
// commands so the runner logic can be tested without spawning processes.
type CommandRunner interface {
	// Run executes command in dir and returns its combined output and exit
	// code. The error is non-nil only when the command could not be run to
	// completion: spawn failure, timeout, or cancellation.
	Run(ctx context.Context, dir string, command string) (CommandResult, error)
}

// DefaultCommandTimeout bounds a single setup or test command.
const DefaultCommandTimeout = 2 * time.Minute

// LocalCommandRunner provides a concrete implementation using os/exec and
// the system shell.
type LocalCommandRunner struct {
	timeout time.Duration
}

// NewLocalCommandRunner constructs a LocalCommandRunner. A non-positive
// timeout falls back to DefaultCommandTimeout.
func NewLocalCommandRunner(timeout time.Duration) *LocalCommandRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	return &LocalCommandRunner{timeout: timeout}
}

// Run executes command with `sh -c` in dir, capturing combined output.
func (r *LocalCommandRunner) Run(ctx context.Context, dir string, command string) (CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	result := CommandResult{Output: output.String()}

	// A timed-out or cancelled command never counts as an observation.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	if err != nil {
		return result, err
	}

	return result, nil
}
