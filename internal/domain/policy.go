package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	m "testgate.dev/pkg/testgate/internal/model"
)

// Engine is the per-module policy state machine. It combines the module's
// change classification, new-test detection and the two canonical runner
// invocations into a terminal verdict.
type Engine struct {
	detector Detector
	runner   Runner

	// allowTestRefactor controls the zero-new-test edge case: when a test
	// file changed but no new identifier was detected and no code changed,
	// true treats the module as compliant (a pure test refactor), false as
	// a missing_tests violation.
	allowTestRefactor bool
}

// NewEngine constructs an Engine.
func NewEngine(detector Detector, runner Runner, allowTestRefactor bool) *Engine {
	return &Engine{
		detector:          detector,
		runner:            runner,
		allowTestRefactor: allowTestRefactor,
	}
}

// EvaluateModule runs the state machine for one module. It never returns an
// error: fatal conditions are handled before evaluation starts, and a
// command that cannot be executed yields an inconclusive verdict rather
// than a violation.
func (e *Engine) EvaluateModule(ctx context.Context, baseline, candidate m.Revision, module m.Module, diff m.ModuleDiff, overrides m.RunOverrides) m.Verdict {
	verdict, ranAll := e.evaluateChanges(ctx, baseline, candidate, module, diff)

	// The regression override additionally demands a passing full suite on
	// the candidate from every module, including unchanged ones. A module
	// already in violation or inconclusive stands as-is.
	if overrides.RegressionRequired && !ranAll && conclusivePass(verdict.State) {
		result, err := e.runner.Run(ctx, candidate, module, m.ScopeAll())
		if err != nil {
			return inconclusive(module.Name, err)
		}

		if !result.Passed {
			return m.Verdict{
				Module: module.Name,
				State:  m.VerdictViolation,
				Reason: m.ReasonRegressionRequired,
				Detail: fmt.Sprintf("full test suite fails on candidate %s", candidate),
				Output: excerpt(result.Output, 1000),
			}
		}

		if verdict.State == m.VerdictSkipped {
			verdict.Detail = "no changes; full suite passes on candidate"
		}
	}

	return verdict
}

// evaluateChanges is the change-driven part of the state machine. The bool
// reports whether the candidate full-suite check already ran, so the
// regression override does not repeat it.
func (e *Engine) evaluateChanges(ctx context.Context, baseline, candidate m.Revision, module m.Module, diff m.ModuleDiff) (m.Verdict, bool) {
	switch diff.State() {
	case m.NoChange:
		return m.Verdict{Module: module.Name, State: m.VerdictSkipped, Detail: "no changes"}, false

	case m.CodeOnly:
		return m.Verdict{
			Module: module.Name,
			State:  m.VerdictViolation,
			Reason: m.ReasonMissingTests,
			Detail: fmt.Sprintf("%d code file(s) changed without any test change", len(diff.CodeChanged)),
		}, false

	default: // TestOnly or CodeAndTest
		return e.evaluateTestChanges(ctx, baseline, candidate, module, diff)
	}
}

func (e *Engine) evaluateTestChanges(ctx context.Context, baseline, candidate m.Revision, module m.Module, diff m.ModuleDiff) (m.Verdict, bool) {
	newTests, err := e.detector.DetectNewTests(ctx, baseline, candidate, module, diff)
	if err != nil {
		return inconclusive(module.Name, err), false
	}

	if newTests.Empty() {
		return e.verdictWithoutNewTests(module, diff), false
	}

	// Baseline-sufficiency check: the new tests must assert something the
	// baseline does not already satisfy, so at least one has to fail there.
	baselineRun, err := e.runner.Run(ctx, baseline, module, m.ScopeTests(newTests.Tests))
	if err != nil {
		return inconclusive(module.Name, err), false
	}

	if baselineRun.Passed {
		return m.Verdict{
			Module: module.Name,
			State:  m.VerdictViolation,
			Reason: m.ReasonWeakTest,
			Detail: fmt.Sprintf("all %d new test(s) already pass on baseline %s", len(newTests.Tests), baseline),
			Output: excerpt(baselineRun.Output, 1000),
		}, false
	}

	// Candidate-correctness check: the full suite must pass on the change.
	candidateRun, err := e.runner.Run(ctx, candidate, module, m.ScopeAll())
	if err != nil {
		return inconclusive(module.Name, err), true
	}

	if !candidateRun.Passed {
		return m.Verdict{
			Module: module.Name,
			State:  m.VerdictViolation,
			Reason: m.ReasonRegression,
			Detail: fmt.Sprintf("full test suite fails on candidate %s", candidate),
			Output: excerpt(candidateRun.Output, 1000),
		}, true
	}

	return m.Verdict{
		Module: module.Name,
		State:  m.VerdictCompliant,
		Detail: fmt.Sprintf("%d new test(s) fail on baseline and the full suite passes on candidate", len(newTests.Tests)),
	}, true
}

// verdictWithoutNewTests resolves the edge case where test files changed
// but no new identifier was detected (see the detector's file-granularity
// limitation).
func (e *Engine) verdictWithoutNewTests(module m.Module, diff m.ModuleDiff) m.Verdict {
	if diff.State() == m.CodeAndTest {
		return m.Verdict{
			Module: module.Name,
			State:  m.VerdictViolation,
			Reason: m.ReasonMissingTests,
			Detail: "code changed but no qualifying new test was detected",
		}
	}

	if !e.allowTestRefactor {
		return m.Verdict{
			Module: module.Name,
			State:  m.VerdictViolation,
			Reason: m.ReasonMissingTests,
			Detail: "test files changed without any detectable new test",
		}
	}

	return m.Verdict{
		Module: module.Name,
		State:  m.VerdictCompliant,
		Detail: "test-only change with no new identifiers, treated as a refactor",
	}
}

func conclusivePass(state m.VerdictState) bool {
	return state == m.VerdictSkipped || state == m.VerdictCompliant
}

func inconclusive(module string, err error) m.Verdict {
	slog.Error("Module evaluation inconclusive", "module", module, "error", err)

	detail := err.Error()

	var execErr *m.ExecutionError
	if errors.As(err, &execErr) {
		detail = fmt.Sprintf("command %q could not be run to completion: %v", execErr.Command, execErr.Err)
	}

	return m.Verdict{Module: module, State: m.VerdictInconclusive, Detail: detail}
}
