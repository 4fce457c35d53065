package model

import "fmt"

// ConfigError reports a malformed or missing module configuration. Fatal;
// the run aborts before any module is evaluated.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// RevisionError reports an unresolvable baseline or candidate revision.
// Fatal; the run aborts before any module is evaluated.
type RevisionError struct {
	Revision Revision
	Err      error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("revision error: cannot resolve %q: %v", e.Revision, e.Err)
}

func (e *RevisionError) Unwrap() error { return e.Err }

// ExecutionError reports a setup or test command that could not be run to
// completion (missing toolchain, spawn failure, timeout). It is distinct
// from a test failure: the affected module becomes inconclusive, never a
// clean violation.
type ExecutionError struct {
	Module  string
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error in module %q: command %q: %v", e.Module, e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
