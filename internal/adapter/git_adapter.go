// Package adapter contains the infrastructure adapters for the testgate CLI.
package adapter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	m "testgate.dev/pkg/testgate/internal/model"
)

// GitAdapter abstracts the git operations the domain layer relies on. It
// intentionally hides direct process execution so the classifier, detector
// and runner logic can be tested without a real repository.
type GitAdapter interface {
	// ResolveRevision resolves a revision expression to a full commit SHA.
	ResolveRevision(ctx context.Context, repo string, rev m.Revision) (string, error)

	// DiffPaths returns every path that differs between the two revisions,
	// with renames reported as delete+add.
	DiffPaths(ctx context.Context, repo string, baseline, candidate m.Revision) (m.ChangeSet, error)

	// ShowFile returns the content of path at the given revision. The bool
	// reports whether the path exists at that revision.
	ShowFile(ctx context.Context, repo string, rev m.Revision, path m.Path) ([]byte, bool, error)

	// AddWorktree materializes a detached working tree for rev at dir.
	AddWorktree(ctx context.Context, repo string, rev m.Revision, dir string) error

	// RemoveWorktree releases a working tree created by AddWorktree.
	RemoveWorktree(ctx context.Context, repo string, dir string) error
}

// ExecGitAdapter is the concrete implementation backed by the git binary.
type ExecGitAdapter struct{}

// NewExecGitAdapter constructs an ExecGitAdapter ready to be wired into the
// domain layer.
func NewExecGitAdapter() *ExecGitAdapter {
	return &ExecGitAdapter{}
}

func (a *ExecGitAdapter) git(ctx context.Context, repo string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repo

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// ResolveRevision resolves a revision expression to a full commit SHA.
func (a *ExecGitAdapter) ResolveRevision(ctx context.Context, repo string, rev m.Revision) (string, error) {
	out, err := a.git(ctx, repo, "rev-parse", "--verify", string(rev)+"^{commit}")
	if err != nil {
		return "", &m.RevisionError{Revision: rev, Err: err}
	}

	return strings.TrimSpace(out), nil
}

// DiffPaths lists changed paths between baseline and candidate using
// name-status output with rename detection disabled, so a rename surfaces
// as one deletion plus one addition.
func (a *ExecGitAdapter) DiffPaths(ctx context.Context, repo string, baseline, candidate m.Revision) (m.ChangeSet, error) {
	out, err := a.git(ctx, repo, "diff", "--name-status", "--no-renames",
		fmt.Sprintf("%s..%s", baseline, candidate))
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", baseline, candidate, err)
	}

	var changes m.ChangeSet

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		status, path, ok := strings.Cut(line, "\t")
		if !ok || status == "" {
			slog.Warn("Skipping unparseable diff line", "line", line)
			continue
		}

		changes = append(changes, m.Change{
			Path: m.Path(path),
			Kind: changeKind(status),
		})
	}

	return changes, nil
}

// changeKind maps a git status letter onto the three kinds the classifier
// distinguishes. Type changes and anything unexpected count as modified.
func changeKind(status string) m.ChangeKind {
	switch status[:1] {
	case "A":
		return m.ChangeAdded
	case "D":
		return m.ChangeDeleted
	default:
		return m.ChangeModified
	}
}

// ShowFile returns the content of path at rev. A missing path is not an
// error; the bool distinguishes absence from a failed read.
func (a *ExecGitAdapter) ShowFile(ctx context.Context, repo string, rev m.Revision, path m.Path) ([]byte, bool, error) {
	spec := fmt.Sprintf("%s:%s", rev, path)

	if _, err := a.git(ctx, repo, "cat-file", "-e", spec); err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}

		return nil, false, nil
	}

	out, err := a.git(ctx, repo, "show", spec)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", spec, err)
	}

	return []byte(out), true, nil
}

// AddWorktree materializes a detached working tree for rev at dir.
func (a *ExecGitAdapter) AddWorktree(ctx context.Context, repo string, rev m.Revision, dir string) error {
	if _, err := a.git(ctx, repo, "worktree", "add", "--detach", dir, string(rev)); err != nil {
		return fmt.Errorf("failed to add worktree for %s: %w", rev, err)
	}

	return nil
}

// RemoveWorktree releases a working tree, logging rather than failing the
// run when cleanup itself goes wrong.
func (a *ExecGitAdapter) RemoveWorktree(ctx context.Context, repo string, dir string) error {
	if _, err := a.git(ctx, repo, "worktree", "remove", "--force", dir); err != nil {
		slog.Error("Failed to remove worktree", "dir", dir, "error", err)
		return err
	}

	return nil
}
