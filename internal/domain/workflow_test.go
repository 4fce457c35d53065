package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"testgate.dev/pkg/testgate/internal/controller"
	m "testgate.dev/pkg/testgate/internal/model"
)

// fakeUI records the presentation calls a run makes.
type fakeUI struct {
	started  bool
	closed   bool
	bypassed string
	verdicts []m.Verdict
	summary  []m.Verdict
	overall  m.Overall
}

func (u *fakeUI) Start(_ context.Context, _ ...controller.StartOption) error {
	u.started = true
	return nil
}

func (u *fakeUI) Close(_ context.Context) { u.closed = true }

func (u *fakeUI) DisplayBypass(_ context.Context, label string) { u.bypassed = label }

func (u *fakeUI) DisplayRunPlan(_ context.Context, _, _ m.Revision, _, _ int) {}

func (u *fakeUI) DisplayModuleStarted(_ context.Context, _ string) {}

func (u *fakeUI) DisplayModuleVerdict(_ context.Context, verdict m.Verdict) {
	u.verdicts = append(u.verdicts, verdict)
}

func (u *fakeUI) DisplaySummary(_ context.Context, verdicts []m.Verdict, overall m.Overall) error {
	u.summary = verdicts
	u.overall = overall

	return nil
}

// fakeReportStore captures the saved report.
type fakeReportStore struct {
	saved *m.RunReport
}

func (s *fakeReportStore) SaveReport(_ m.Path, report m.RunReport) error {
	s.saved = &report
	return nil
}

func (s *fakeReportStore) LoadReport(_ m.Path) (m.RunReport, error) {
	return *s.saved, nil
}

// fakeRunLog counts appended test executions.
type fakeRunLog struct {
	items []m.TestRunResult
}

func (l *fakeRunLog) Len() uint64  { return uint64(len(l.items)) }
func (l *fakeRunLog) Path() string { return "fake.gob" }
func (l *fakeRunLog) Close() error { return nil }

func (l *fakeRunLog) Append(item m.TestRunResult) error {
	l.items = append(l.items, item)
	return nil
}

func (l *fakeRunLog) Range(f func(index uint64, item m.TestRunResult) error) error {
	for i, item := range l.items {
		if err := f(uint64(i), item); err != nil {
			return err
		}
	}

	return nil
}

func workflowFixture(t *testing.T, git *fakeGit, runner Runner) (Workflow, *fakeUI, *fakeReportStore) {
	t.Helper()

	registry, err := NewRegistry([]m.Module{coreModule(), utilsModule()})
	require.NoError(t, err)

	ui := &fakeUI{}
	reports := &fakeReportStore{}
	engine := NewEngine(NewDetector(git, "."), runner, true)
	workflow := NewWorkflow(registry, NewClassifier(git, ".", registry), engine, ui, reports)

	return workflow, ui, reports
}

func TestWorkflowBypassShortCircuits(t *testing.T) {
	git := &fakeGit{changes: m.ChangeSet{{Path: "src/app/main.py", Kind: m.ChangeModified}}}
	runner := &fakeRunner{}
	workflow, ui, reports := workflowFixture(t, git, runner)

	overall, err := workflow.Check(context.Background(), CheckArgs{
		Baseline:    "main",
		Candidate:   "feature",
		Overrides:   m.RunOverrides{Bypass: true},
		BypassLabel: "skip-test-policy",
		Reports:     "out",
	})
	require.NoError(t, err)
	require.Equal(t, m.OverallPass, overall)

	// Loud, and with zero test executions.
	require.Equal(t, "skip-test-policy", ui.bypassed)
	require.Empty(t, runner.calls)
	require.Zero(t, git.diffCalled)

	require.NotNil(t, reports.saved)
	require.Equal(t, m.OverallPass, reports.saved.Overall)
	require.Len(t, reports.saved.Verdicts, 2)

	for _, verdict := range reports.saved.Verdicts {
		require.Equal(t, m.VerdictSkipped, verdict.State)
	}
}

func TestWorkflowFullRun(t *testing.T) {
	// core: code-only change (violation); utils: untouched (skipped).
	git := &fakeGit{changes: m.ChangeSet{{Path: "src/app/main.py", Kind: m.ChangeModified}}}
	runner := &fakeRunner{}
	workflow, ui, reports := workflowFixture(t, git, runner)

	overall, err := workflow.Check(context.Background(), CheckArgs{
		Baseline:  "main",
		Candidate: "feature",
		Reports:   "out",
	})
	require.NoError(t, err)
	require.Equal(t, m.OverallFail, overall)

	require.True(t, ui.started)
	require.True(t, ui.closed)
	require.Len(t, ui.summary, 2)

	// Violations never stop the other modules; both verdicts are present
	// and in configuration order.
	require.Equal(t, "core", ui.summary[0].Module)
	require.Equal(t, m.VerdictViolation, ui.summary[0].State)
	require.Equal(t, m.ReasonMissingTests, ui.summary[0].Reason)
	require.Equal(t, "utils", ui.summary[1].Module)
	require.Equal(t, m.VerdictSkipped, ui.summary[1].State)

	require.Equal(t, m.OverallFail, reports.saved.Overall)
}

func TestWorkflowRevisionErrorAborts(t *testing.T) {
	git := &fakeGit{badRevs: map[m.Revision]bool{"nope": true}}
	runner := &fakeRunner{}
	workflow, ui, reports := workflowFixture(t, git, runner)

	_, err := workflow.Check(context.Background(), CheckArgs{Baseline: "nope", Candidate: "feature"})
	require.Error(t, err)

	var revErr *m.RevisionError
	require.ErrorAs(t, err, &revErr)

	// No module was evaluated and no report was produced.
	require.Empty(t, ui.verdicts)
	require.Nil(t, reports.saved)
}

func TestWorkflowParallelKeepsVerdictOrder(t *testing.T) {
	git := &fakeGit{changes: m.ChangeSet{
		{Path: "src/app/main.py", Kind: m.ChangeModified},
		{Path: "utils/helper.py", Kind: m.ChangeModified},
	}}
	runner := &fakeRunner{}
	workflow, ui, _ := workflowFixture(t, git, runner)

	overall, err := workflow.Check(context.Background(), CheckArgs{
		Baseline:  "main",
		Candidate: "feature",
		Workers:   4,
	})
	require.NoError(t, err)
	require.Equal(t, m.OverallFail, overall)

	require.Equal(t, "core", ui.summary[0].Module)
	require.Equal(t, "utils", ui.summary[1].Module)
}

func TestWorkflowIdempotent(t *testing.T) {
	run := func() []m.Verdict {
		git := &fakeGit{changes: m.ChangeSet{{Path: "src/app/main.py", Kind: m.ChangeModified}}}
		workflow, ui, _ := workflowFixture(t, git, &fakeRunner{})

		_, err := workflow.Check(context.Background(), CheckArgs{Baseline: "main", Candidate: "feature"})
		require.NoError(t, err)

		return ui.summary
	}

	require.Equal(t, run(), run())
}

func TestRecordingRunner(t *testing.T) {
	log := &fakeRunLog{}
	inner := &fakeRunner{passed: map[string]bool{runKey("feature", true): true}}
	runner := NewRecordingRunner(inner, log)

	result, err := runner.Run(context.Background(), "feature", policyModule(), m.ScopeAll())
	require.NoError(t, err)
	require.True(t, result.Passed)
	require.Equal(t, uint64(1), log.Len())
	require.Equal(t, result, log.items[0])
}
