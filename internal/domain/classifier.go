package domain

import (
	"context"
	"fmt"
	"log/slog"

	"testgate.dev/pkg/testgate/internal/adapter"
	m "testgate.dev/pkg/testgate/internal/model"
)

// Classifier partitions the changed paths between two revisions per module
// into code changes and test changes.
type Classifier interface {
	Classify(ctx context.Context, baseline, candidate m.Revision) (map[string]m.ModuleDiff, error)
}

type classifier struct {
	git      adapter.GitAdapter
	repo     string
	registry *Registry
}

// NewClassifier constructs a Classifier over the given repository.
func NewClassifier(git adapter.GitAdapter, repo string, registry *Registry) Classifier {
	return &classifier{git: git, repo: repo, registry: registry}
}

// Classify resolves both revisions, computes the changed-path set once and
// evaluates every changed path against each module's pattern lists. A path
// may land in several modules when their patterns overlap; each module's
// policy is evaluated independently.
func (c *classifier) Classify(ctx context.Context, baseline, candidate m.Revision) (map[string]m.ModuleDiff, error) {
	if _, err := c.git.ResolveRevision(ctx, c.repo, baseline); err != nil {
		return nil, err
	}

	if _, err := c.git.ResolveRevision(ctx, c.repo, candidate); err != nil {
		return nil, err
	}

	changes, err := c.git.DiffPaths(ctx, c.repo, baseline, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute change set: %w", err)
	}

	slog.Debug("Computed change set", "baseline", baseline, "candidate", candidate, "paths", len(changes))

	diffs := make(map[string]m.ModuleDiff, c.registry.Len())

	for _, module := range c.registry.Modules() {
		diff := m.ModuleDiff{Module: module.Name}

		for _, change := range changes {
			if MatchRules(module.CodeRules, change.Path) {
				diff.CodeChanged = append(diff.CodeChanged, change)
			}

			if MatchRules(module.TestRules, change.Path) {
				diff.TestChanged = append(diff.TestChanged, change)
			}
		}

		diffs[module.Name] = diff
	}

	return diffs, nil
}
