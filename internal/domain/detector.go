package domain

import (
	"context"
	"fmt"
	"log/slog"

	"testgate.dev/pkg/testgate/internal/adapter"
	m "testgate.dev/pkg/testgate/internal/model"
)

// Detector identifies test cases that exist in the candidate revision's
// test files but not in the baseline's.
type Detector interface {
	DetectNewTests(ctx context.Context, baseline, candidate m.Revision, module m.Module, diff m.ModuleDiff) (m.NewTestSet, error)
}

type detector struct {
	git  adapter.GitAdapter
	repo string
}

// NewDetector constructs a Detector over the given repository.
func NewDetector(git adapter.GitAdapter, repo string) Detector {
	return &detector{git: git, repo: repo}
}

// DetectNewTests compares the baseline and candidate versions of every
// changed test file. With a configured test-name pattern the comparison is
// per named test case: an identifier present only in the candidate counts
// as new, so a renamed test is new and a deleted-then-readded one is not.
//
// Without a pattern the detector falls back to file-level granularity: only
// a brand-new file counts as one new test. This deliberately conservative
// default never flags a pure refactor of existing tests, but it also cannot
// see one case added among many in an existing file.
func (d *detector) DetectNewTests(ctx context.Context, baseline, candidate m.Revision, module m.Module, diff m.ModuleDiff) (m.NewTestSet, error) {
	set := m.NewTestSet{Module: module.Name}

	for _, change := range diff.TestChanged {
		if change.Kind == m.ChangeDeleted {
			continue
		}

		ids, err := d.newTestsInFile(ctx, baseline, candidate, module, change)
		if err != nil {
			return m.NewTestSet{}, err
		}

		set.Tests = append(set.Tests, ids...)
	}

	slog.Debug("Detected new tests", "module", module.Name, "count", len(set.Tests))

	return set, nil
}

func (d *detector) newTestsInFile(ctx context.Context, baseline, candidate m.Revision, module m.Module, change m.Change) ([]m.TestID, error) {
	if !module.NamedGranularity() {
		// File-level fallback: a modified file yields no signal.
		if change.Kind == m.ChangeAdded {
			return []m.TestID{{File: change.Path}}, nil
		}

		return nil, nil
	}

	content, exists, err := d.git.ShowFile(ctx, d.repo, candidate, change.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate test file %q: %w", change.Path, err)
	}

	if !exists {
		return nil, nil
	}

	candidateNames := extractTestNames(module, content)

	baselineNames := map[string]bool{}

	if change.Kind != m.ChangeAdded {
		baseContent, baseExists, err := d.git.ShowFile(ctx, d.repo, baseline, change.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read baseline test file %q: %w", change.Path, err)
		}

		if baseExists {
			for _, name := range extractTestNames(module, baseContent) {
				baselineNames[name] = true
			}
		}
	}

	var ids []m.TestID

	for _, name := range candidateNames {
		if !baselineNames[name] {
			ids = append(ids, m.TestID{File: change.Path, Name: name})
		}
	}

	return ids, nil
}

// extractTestNames applies the module's test-name pattern to file content.
// The first capture group identifies the test; a pattern without groups
// uses the whole match. Duplicates keep their first position.
func extractTestNames(module m.Module, content []byte) []string {
	matches := module.TestName.FindAllSubmatch(content, -1)

	var names []string

	seen := map[string]bool{}

	for _, match := range matches {
		name := string(match[0])
		if module.TestName.NumSubexp() >= 1 && match[1] != nil {
			name = string(match[1])
		}

		if name == "" || seen[name] {
			continue
		}

		seen[name] = true

		names = append(names, name)
	}

	return names
}
