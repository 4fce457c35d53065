package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"testgate.dev/pkg/testgate/internal/adapter"
	m "testgate.dev/pkg/testgate/internal/model"
)

// Runner executes a module's test commands against a materialized revision.
// Each invocation gets its own disposable worktree, so invocations never
// share mutable tree state; serialization within a module is the caller's
// concern.
type Runner interface {
	Run(ctx context.Context, revision m.Revision, module m.Module, scope m.Scope) (m.TestRunResult, error)
}

type runner struct {
	git  adapter.GitAdapter
	cmd  adapter.CommandRunner
	repo string
}

// NewRunner constructs a Runner over the given repository.
func NewRunner(git adapter.GitAdapter, cmd adapter.CommandRunner, repo string) Runner {
	return &runner{git: git, cmd: cmd, repo: repo}
}

// Run materializes the revision in a fresh worktree, runs the module's
// setup commands once, then the scoped test command. Test failure is a
// result; a command that cannot be run to completion is an ExecutionError.
func (r *runner) Run(ctx context.Context, revision m.Revision, module m.Module, scope m.Scope) (m.TestRunResult, error) {
	result := m.TestRunResult{
		Module:   module.Name,
		Revision: revision,
		ScopeAll: scope.All,
		Tests:    scope.Tests,
	}

	dir, cleanup, err := r.materialize(ctx, revision)
	if cleanup != nil {
		defer cleanup()
	}

	if err != nil {
		return result, err
	}

	for _, setup := range module.Setup {
		res, err := r.cmd.Run(ctx, dir, setup)
		if err != nil {
			return result, &m.ExecutionError{Module: module.Name, Command: setup, Err: err}
		}

		if res.ExitCode != 0 {
			// A failing setup command means the environment could not be
			// prepared, which is inconclusive, not a test observation.
			return result, &m.ExecutionError{
				Module:  module.Name,
				Command: setup,
				Err:     fmt.Errorf("setup exited with code %d: %s", res.ExitCode, excerpt(res.Output, 500)),
			}
		}
	}

	command := module.RunAllTests
	if !scope.All {
		command = strings.ReplaceAll(module.RunNewTests, m.ScopePlaceholder, scope.Arg())
	}

	slog.Debug("Running test command", "module", module.Name, "revision", revision, "scope", scope.String())

	res, err := r.cmd.Run(ctx, dir, command)
	if err != nil {
		return result, &m.ExecutionError{Module: module.Name, Command: command, Err: err}
	}

	result.Passed = res.ExitCode == 0
	result.Output = res.Output

	return result, nil
}

// materialize sets up a detached worktree for the revision under a private
// temp directory. The returned cleanup releases both.
func (r *runner) materialize(ctx context.Context, revision m.Revision) (string, func(), error) {
	parent, err := os.MkdirTemp("", "testgate-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(parent); err != nil {
			slog.Error("Failed to clean temp dir", "dir", parent, "error", err)
		}
	}

	dir := filepath.Join(parent, "tree")

	if err := r.git.AddWorktree(ctx, r.repo, revision, dir); err != nil {
		return "", cleanup, fmt.Errorf("failed to materialize %s: %w", revision, err)
	}

	cleanup = func() {
		_ = r.git.RemoveWorktree(context.WithoutCancel(ctx), r.repo, dir)

		if err := os.RemoveAll(parent); err != nil {
			slog.Error("Failed to clean temp dir", "dir", parent, "error", err)
		}
	}

	return dir, cleanup, nil
}

// excerpt truncates captured output for embedding in errors and verdicts.
func excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}

	return s[:limit] + "…"
}
