package adapter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/go-github/v57/github"

	m "testgate.dev/pkg/testgate/internal/model"
)

// EventInputs are the run inputs the hosting CI platform supplies through
// its event payload: the two revisions and the label set.
type EventInputs struct {
	Baseline  m.Revision
	Candidate m.Revision
	Labels    []string
}

// EventAdapter extracts run inputs from the triggering event. The engine
// never reaches the platform's API; the payload file is all it reads.
type EventAdapter interface {
	ReadPullRequestEvent(path string) (EventInputs, error)
}

// GitHubEventAdapter decodes a GitHub Actions pull_request event payload.
type GitHubEventAdapter struct{}

// NewGitHubEventAdapter constructs a GitHubEventAdapter.
func NewGitHubEventAdapter() *GitHubEventAdapter {
	return &GitHubEventAdapter{}
}

// ReadPullRequestEvent reads the payload file GitHub Actions points at via
// GITHUB_EVENT_PATH and pulls out the base/head SHAs and label names.
func (a *GitHubEventAdapter) ReadPullRequestEvent(path string) (EventInputs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return EventInputs{}, fmt.Errorf("failed to read event payload %q: %w", path, err)
	}

	var event github.PullRequestEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return EventInputs{}, fmt.Errorf("failed to parse event payload %q: %w", path, err)
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return EventInputs{}, fmt.Errorf("event payload %q has no pull request", path)
	}

	inputs := EventInputs{
		Baseline:  m.Revision(pr.GetBase().GetSHA()),
		Candidate: m.Revision(pr.GetHead().GetSHA()),
	}

	for _, label := range pr.Labels {
		inputs.Labels = append(inputs.Labels, label.GetName())
	}

	return inputs, nil
}
