package adapter

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "testgate.dev/pkg/testgate/internal/model"
)

// These tests exercise ExecGitAdapter against a real throwaway repository
// instead of mocking process execution.

func gitIn(t *testing.T, repo string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = repo
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=tester",
		"GIT_AUTHOR_EMAIL=tester@example.com",
		"GIT_COMMITTER_NAME=tester",
		"GIT_COMMITTER_EMAIL=tester@example.com",
	)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)

	return string(out)
}

func commitFile(t *testing.T, repo, path, content, message string) {
	t.Helper()

	full := filepath.Join(repo, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	gitIn(t, repo, "add", path)
	gitIn(t, repo, "commit", "-m", message)
}

// newTestRepo builds a two-commit repository: the first commit holds
// src/calc.py, the second modifies it, adds tests/test_calc.py and deletes
// src/old.py.
func newTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	repo := t.TempDir()
	gitIn(t, repo, "init", "-b", "main")
	gitIn(t, repo, "config", "user.name", "tester")
	gitIn(t, repo, "config", "user.email", "tester@example.com")

	commitFile(t, repo, "src/calc.py", "def add(a, b):\n    return a + b\n", "initial")
	commitFile(t, repo, "src/old.py", "LEGACY = True\n", "legacy module")

	gitIn(t, repo, "rm", "src/old.py")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "src/calc.py"),
		[]byte("def add(a, b):\n    return a + b\n\ndef sub(a, b):\n    return a - b\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "tests"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "tests/test_calc.py"),
		[]byte("def test_sub():\n    assert True\n"), 0o600))
	gitIn(t, repo, "add", "-A")
	gitIn(t, repo, "commit", "-m", "add sub with test")

	return repo
}

func TestExecGitAdapter(t *testing.T) {
	repo := newTestRepo(t)
	adapter := NewExecGitAdapter()
	ctx := context.Background()

	t.Run("resolves revisions to full SHAs", func(t *testing.T) {
		sha, err := adapter.ResolveRevision(ctx, repo, "HEAD")
		require.NoError(t, err)
		assert.Len(t, sha, 40)
	})

	t.Run("unknown revision is a RevisionError", func(t *testing.T) {
		_, err := adapter.ResolveRevision(ctx, repo, "does-not-exist")
		require.Error(t, err)

		var revErr *m.RevisionError
		require.ErrorAs(t, err, &revErr)
		assert.Equal(t, m.Revision("does-not-exist"), revErr.Revision)
	})

	t.Run("diff reports adds, modifications and deletions", func(t *testing.T) {
		changes, err := adapter.DiffPaths(ctx, repo, "HEAD~1", "HEAD")
		require.NoError(t, err)

		kinds := make(map[m.Path]m.ChangeKind)
		for _, change := range changes {
			kinds[change.Path] = change.Kind
		}

		assert.Equal(t, m.ChangeModified, kinds["src/calc.py"])
		assert.Equal(t, m.ChangeAdded, kinds["tests/test_calc.py"])
		assert.Equal(t, m.ChangeDeleted, kinds["src/old.py"])
	})

	t.Run("empty diff between identical revisions", func(t *testing.T) {
		changes, err := adapter.DiffPaths(ctx, repo, "HEAD", "HEAD")
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("shows file content at a revision", func(t *testing.T) {
		content, exists, err := adapter.ShowFile(ctx, repo, "HEAD", "tests/test_calc.py")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Contains(t, string(content), "def test_sub")
	})

	t.Run("missing file at a revision is not an error", func(t *testing.T) {
		_, exists, err := adapter.ShowFile(ctx, repo, "HEAD~2", "tests/test_calc.py")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("worktree add and remove", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "tree")

		require.NoError(t, adapter.AddWorktree(ctx, repo, "HEAD~1", dir))

		_, err := os.Stat(filepath.Join(dir, "src", "old.py"))
		require.NoError(t, err, "worktree must hold the old revision's files")

		require.NoError(t, adapter.RemoveWorktree(ctx, repo, dir))

		_, err = os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})
}
