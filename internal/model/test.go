package model

import "strings"

// TestID identifies a test at the finest granularity available for its
// module: a file path, optionally qualified by a named test case.
type TestID struct {
	File Path   `json:"file"`
	Name string `json:"name,omitempty"` // empty for file-level granularity
}

// String renders the identifier in the file::name form most test runners
// accept as a selection argument (plain file path when unnamed).
func (id TestID) String() string {
	if id.Name == "" {
		return string(id.File)
	}

	return string(id.File) + "::" + id.Name
}

// NewTestSet holds the test identifiers present in the candidate's test
// files but absent from the baseline's, for one module. May be empty even
// when test files changed (a pure refactor adds no identifiers).
type NewTestSet struct {
	Module string
	Tests  []TestID
}

// Empty reports whether no new test identifiers were detected.
func (s NewTestSet) Empty() bool {
	return len(s.Tests) == 0
}

// Scope selects which tests a runner invocation targets: a finite set of
// identifiers, or everything the module's full command covers.
type Scope struct {
	All   bool
	Tests []TestID
}

// ScopeAll targets the module's entire test suite.
func ScopeAll() Scope {
	return Scope{All: true}
}

// ScopeTests targets the given identifiers only.
func ScopeTests(ids []TestID) Scope {
	return Scope{Tests: ids}
}

// Arg renders the scope as the argument string substituted for the
// ScopePlaceholder in command templates.
func (s Scope) Arg() string {
	parts := make([]string, 0, len(s.Tests))
	for _, id := range s.Tests {
		parts = append(parts, id.String())
	}

	return strings.Join(parts, " ")
}

// String describes the scope for logs and reports.
func (s Scope) String() string {
	if s.All {
		return "all"
	}

	return s.Arg()
}

// TestRunResult is the outcome of executing one test command against one
// revision. Ephemeral; not persisted beyond the run except as a spilled
// execution record.
type TestRunResult struct {
	Module   string   `json:"module"`
	Revision Revision `json:"revision"`
	ScopeAll bool     `json:"scope_all"`
	Tests    []TestID `json:"tests,omitempty"`
	Passed   bool     `json:"passed"`
	Output   string   `json:"output"`
}
