package domain

import (
	"context"
	"fmt"

	"testgate.dev/pkg/testgate/internal/adapter"
	m "testgate.dev/pkg/testgate/internal/model"
)

// fakeGit is an in-memory GitAdapter: revision contents are seeded as
// revision -> path -> content maps and the diff is fixed up front.
type fakeGit struct {
	changes    m.ChangeSet
	files      map[m.Revision]map[m.Path]string
	badRevs    map[m.Revision]bool
	worktrees  []string
	showCalls  int
	diffCalled int
}

func (g *fakeGit) ResolveRevision(_ context.Context, _ string, rev m.Revision) (string, error) {
	if g.badRevs[rev] {
		return "", &m.RevisionError{Revision: rev, Err: fmt.Errorf("unknown revision")}
	}

	return "sha-" + string(rev), nil
}

func (g *fakeGit) DiffPaths(_ context.Context, _ string, _, _ m.Revision) (m.ChangeSet, error) {
	g.diffCalled++
	return g.changes, nil
}

func (g *fakeGit) ShowFile(_ context.Context, _ string, rev m.Revision, path m.Path) ([]byte, bool, error) {
	g.showCalls++

	content, ok := g.files[rev][path]
	if !ok {
		return nil, false, nil
	}

	return []byte(content), true, nil
}

func (g *fakeGit) AddWorktree(_ context.Context, _ string, rev m.Revision, dir string) error {
	g.worktrees = append(g.worktrees, string(rev)+":"+dir)
	return nil
}

func (g *fakeGit) RemoveWorktree(_ context.Context, _ string, _ string) error {
	return nil
}

// fakeDetector returns a canned NewTestSet.
type fakeDetector struct {
	set m.NewTestSet
	err error
}

func (d *fakeDetector) DetectNewTests(_ context.Context, _, _ m.Revision, module m.Module, _ m.ModuleDiff) (m.NewTestSet, error) {
	if d.err != nil {
		return m.NewTestSet{}, d.err
	}

	set := d.set
	set.Module = module.Name

	return set, nil
}

type runnerCall struct {
	revision m.Revision
	module   string
	all      bool
}

// fakeRunner returns canned pass/fail outcomes keyed by revision and scope
// kind, and records every invocation.
type fakeRunner struct {
	passed map[string]bool
	errs   map[string]error
	calls  []runnerCall
}

func runKey(revision m.Revision, all bool) string {
	return fmt.Sprintf("%s|all=%v", revision, all)
}

func (r *fakeRunner) Run(_ context.Context, revision m.Revision, module m.Module, scope m.Scope) (m.TestRunResult, error) {
	r.calls = append(r.calls, runnerCall{revision: revision, module: module.Name, all: scope.All})

	key := runKey(revision, scope.All)
	if err := r.errs[key]; err != nil {
		return m.TestRunResult{}, err
	}

	return m.TestRunResult{
		Module:   module.Name,
		Revision: revision,
		ScopeAll: scope.All,
		Tests:    scope.Tests,
		Passed:   r.passed[key],
		Output:   "fake output for " + key,
	}, nil
}

// fakeCommandRunner returns canned results keyed by command string and
// records every command it was asked to execute.
type fakeCommandRunner struct {
	exitCodes map[string]int
	outputs   map[string]string
	errs      map[string]error
	commands  []string
}

func (c *fakeCommandRunner) Run(_ context.Context, _ string, command string) (adapter.CommandResult, error) {
	c.commands = append(c.commands, command)

	if err := c.errs[command]; err != nil {
		return adapter.CommandResult{}, err
	}

	return adapter.CommandResult{
		Output:   c.outputs[command],
		ExitCode: c.exitCodes[command],
	}, nil
}
