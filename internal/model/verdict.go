package model

// VerdictState is the terminal state of one module's policy evaluation.
type VerdictState string

const (
	// VerdictSkipped means the module saw no changes and ran no checks.
	VerdictSkipped VerdictState = "SKIPPED"
	// VerdictCompliant means every applicable rule was satisfied.
	VerdictCompliant VerdictState = "COMPLIANT"
	// VerdictViolation means a policy rule failed; Reason says which.
	VerdictViolation VerdictState = "VIOLATION"
	// VerdictInconclusive means a setup or test command could not be run to
	// completion, so the module cannot be certified either way.
	VerdictInconclusive VerdictState = "INCONCLUSIVE"
)

// Reason is the machine-readable code attached to a violation.
type Reason string

const (
	// ReasonMissingTests marks a code change with no qualifying test change.
	ReasonMissingTests Reason = "missing_tests"
	// ReasonWeakTest marks new tests that already pass on the baseline.
	ReasonWeakTest Reason = "weak_test"
	// ReasonRegression marks a failing full suite on the candidate.
	ReasonRegression Reason = "regression"
	// ReasonRegressionRequired marks a module failing the full-suite check
	// forced by the regression override.
	ReasonRegressionRequired Reason = "regression_required"
)

// Verdict is one module's terminal evaluation result.
type Verdict struct {
	Module string       `json:"module"`
	State  VerdictState `json:"state"`
	Reason Reason       `json:"reason,omitempty"`
	Detail string       `json:"detail,omitempty"`
	// Output is an excerpt of the captured test output backing the verdict.
	Output string `json:"output,omitempty"`
}

// Overall is the process-level decision folded from all module verdicts.
type Overall string

const (
	// OverallPass maps to exit code 0.
	OverallPass Overall = "PASS"
	// OverallFail maps to a non-zero exit code.
	OverallFail Overall = "FAIL"
)

// RunOverrides carries the label-driven switches into the policy engine as
// one explicit value object instead of scattered conditionals.
type RunOverrides struct {
	// Bypass short-circuits the whole run to PASS without evaluating any
	// module. Must be visible and logged, never silent.
	Bypass bool `json:"bypass"`
	// RegressionRequired forces the candidate full-suite check on every
	// module, including unchanged ones.
	RegressionRequired bool `json:"regression_required"`
}

// OverallOf folds per-module verdicts into the process decision: FAIL iff
// any module is in violation or could not be conclusively evaluated.
func OverallOf(verdicts []Verdict) Overall {
	for _, v := range verdicts {
		if v.State == VerdictViolation || v.State == VerdictInconclusive {
			return OverallFail
		}
	}

	return OverallPass
}
