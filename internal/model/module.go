// Package model defines the data structures for pull-request policy evaluation.
package model

import "regexp"

// Path represents a repository-relative file path.
type Path string

// Revision identifies a git revision (SHA, branch name, or ref expression).
type Revision string

// ScopePlaceholder is the token in run_new_tests_command templates that gets
// replaced with the space-separated set of new test identifiers.
const ScopePlaceholder = "{tests}"

// ModuleConfig is the on-disk shape of a single module in the modules
// document. Validation tags are enforced when the document is loaded.
type ModuleConfig struct {
	Name          string   `yaml:"name"           validate:"required"`
	CodePatterns  []string `yaml:"code_patterns"  validate:"required,min=1,dive,required"`
	TestPatterns  []string `yaml:"test_patterns"  validate:"required,min=1,dive,required"`
	SetupCommands []string `yaml:"setup_commands" validate:"dive,required"`
	// RunNewTestsCommand must contain the ScopePlaceholder token.
	RunNewTestsCommand string `yaml:"run_new_tests_command" validate:"required"`
	RunAllTestsCommand string `yaml:"run_all_tests_command" validate:"required"`
	// TestNamePattern is an optional regular expression that extracts named
	// test cases from a test file (first capture group, or the whole match).
	// When empty the module falls back to file-level granularity.
	TestNamePattern string `yaml:"test_name_pattern"`
}

// PatternRule is one compiled entry in an ordered include/exclude glob list.
// Rules written with a leading '!' in the config become exclusions.
type PatternRule struct {
	Glob    string
	Exclude bool
}

// Module is a compiled, immutable module definition. Constructed once per
// run from ModuleConfig; never mutated afterwards.
type Module struct {
	Name        string
	CodeRules   []PatternRule
	TestRules   []PatternRule
	Setup       []string
	RunNewTests string
	RunAllTests string
	TestName    *regexp.Regexp // nil means file-level granularity
}

// NamedGranularity reports whether the module can identify individual test
// cases by name rather than whole files.
func (mod Module) NamedGranularity() bool {
	return mod.TestName != nil
}
