// Package controller provides output adapters for presenting policy
// evaluation progress and results.
package controller

import (
	"context"
	"os"

	"golang.org/x/term"

	m "testgate.dev/pkg/testgate/internal/model"
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	modules []string
}

// WithModules announces the module names the run will evaluate, so the UI
// can lay out one row per module up front.
func WithModules(names []string) StartOption {
	return func(c *StartConfig) {
		c.modules = names
	}
}

// UI defines the interface for presenting a policy run. Implementations can
// use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	// DisplayBypass announces the short-circuit loudly; a bypass must never
	// be silent.
	DisplayBypass(ctx context.Context, label string)
	DisplayRunPlan(ctx context.Context, baseline, candidate m.Revision, modules, workers int)
	DisplayModuleStarted(ctx context.Context, module string)
	DisplayModuleVerdict(ctx context.Context, verdict m.Verdict)
	DisplaySummary(ctx context.Context, verdicts []m.Verdict, overall m.Overall) error
}

// IsTTY reports whether the writer is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
