package domain

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"testgate.dev/pkg/testgate/internal/adapter"
	"testgate.dev/pkg/testgate/internal/controller"
	m "testgate.dev/pkg/testgate/internal/model"
	"testgate.dev/pkg/testgate/pkg"
)

// CheckArgs are the inputs for one end-to-end policy evaluation.
type CheckArgs struct {
	Baseline  m.Revision
	Candidate m.Revision
	Overrides m.RunOverrides
	// BypassLabel names the label that triggered the bypass, for reporting.
	BypassLabel string
	// Workers caps concurrent module evaluations. Each module's sequence of
	// checks stays an atomic, non-interleaved unit regardless of the cap.
	Workers int
	// Reports is the directory the run report is written to; empty disables
	// persistence.
	Reports m.Path
}

// Workflow drives one end-to-end policy evaluation: classify, evaluate each
// module, aggregate, report.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) (m.Overall, error)
}

type workflow struct {
	registry   *Registry
	classifier Classifier
	engine     *Engine
	ui         controller.UI
	reports    adapter.ReportStore
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	registry *Registry,
	classifier Classifier,
	engine *Engine,
	ui controller.UI,
	reports adapter.ReportStore,
) Workflow {
	return &workflow{
		registry:   registry,
		classifier: classifier,
		engine:     engine,
		ui:         ui,
		reports:    reports,
	}
}

// Check evaluates every configured module and folds the verdicts into the
// overall decision. Per-module violations never stop the other modules; the
// full report is always produced. Fatal configuration or revision problems
// abort before any module runs.
func (w *workflow) Check(ctx context.Context, args CheckArgs) (m.Overall, error) {
	modules := w.registry.Modules()

	names := make([]string, 0, len(modules))
	for _, module := range modules {
		names = append(names, module.Name)
	}

	if err := w.ui.Start(ctx, controller.WithModules(names)); err != nil {
		return m.OverallFail, err
	}

	defer w.ui.Close(ctx)

	if args.Overrides.Bypass {
		return w.bypass(ctx, args, modules)
	}

	diffs, err := w.classifier.Classify(ctx, args.Baseline, args.Candidate)
	if err != nil {
		return m.OverallFail, err
	}

	workers := args.Workers
	if workers < 1 {
		workers = 1
	}

	w.ui.DisplayRunPlan(ctx, args.Baseline, args.Candidate, len(modules), workers)

	verdicts := make([]m.Verdict, len(modules))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, module := range modules {
		group.Go(func() error {
			w.ui.DisplayModuleStarted(groupCtx, module.Name)

			verdict := w.engine.EvaluateModule(
				groupCtx, args.Baseline, args.Candidate, module, diffs[module.Name], args.Overrides)

			verdicts[i] = verdict
			w.ui.DisplayModuleVerdict(groupCtx, verdict)

			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return m.OverallFail, err
	}

	overall := m.OverallOf(verdicts)

	return overall, w.finish(ctx, args, verdicts, overall)
}

// bypass short-circuits the run to PASS without invoking any module's
// runner. Loud by design.
func (w *workflow) bypass(ctx context.Context, args CheckArgs, modules []m.Module) (m.Overall, error) {
	slog.Warn("Policy evaluation bypassed", "label", args.BypassLabel)
	w.ui.DisplayBypass(ctx, args.BypassLabel)

	verdicts := make([]m.Verdict, 0, len(modules))
	for _, module := range modules {
		verdicts = append(verdicts, m.Verdict{
			Module: module.Name,
			State:  m.VerdictSkipped,
			Detail: "bypass label set",
		})
	}

	return m.OverallPass, w.finish(ctx, args, verdicts, m.OverallPass)
}

func (w *workflow) finish(ctx context.Context, args CheckArgs, verdicts []m.Verdict, overall m.Overall) error {
	if err := w.ui.DisplaySummary(ctx, verdicts, overall); err != nil {
		return err
	}

	if args.Reports == "" {
		return nil
	}

	report := m.RunReport{
		Baseline:  args.Baseline,
		Candidate: args.Candidate,
		Overrides: args.Overrides,
		Verdicts:  verdicts,
		Overall:   overall,
	}

	// A report write failure must not flip the policy decision.
	if err := w.reports.SaveReport(args.Reports, report); err != nil {
		slog.Error("Failed to save run report", "dir", args.Reports, "error", err)
	}

	return nil
}

// recordingRunner appends every execution to a run log before handing the
// result back, so the full captured output survives the run on disk.
type recordingRunner struct {
	inner Runner
	log   pkg.RunLog[m.TestRunResult]
}

// NewRecordingRunner wraps a Runner with run-log persistence.
func NewRecordingRunner(inner Runner, log pkg.RunLog[m.TestRunResult]) Runner {
	return &recordingRunner{inner: inner, log: log}
}

func (r *recordingRunner) Run(ctx context.Context, revision m.Revision, module m.Module, scope m.Scope) (m.TestRunResult, error) {
	result, err := r.inner.Run(ctx, revision, module, scope)
	if err != nil {
		return result, err
	}

	if logErr := r.log.Append(result); logErr != nil {
		slog.Error("Failed to record test run", "module", module.Name, "error", logErr)
	}

	return result, nil
}
