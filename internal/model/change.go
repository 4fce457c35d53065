package model

// ChangeKind classifies how a path differs between baseline and candidate.
// Renames are reported as delete+add; pattern matching only needs path
// identity, not history.
type ChangeKind string

const (
	// ChangeAdded marks a path present only in the candidate.
	ChangeAdded ChangeKind = "A"
	// ChangeModified marks a path whose content differs between revisions.
	ChangeModified ChangeKind = "M"
	// ChangeDeleted marks a path present only in the baseline.
	ChangeDeleted ChangeKind = "D"
)

// Change is a single changed path tagged with its change kind.
type Change struct {
	Path Path
	Kind ChangeKind
}

// ChangeSet is every path that differs between the two revisions.
// Derived once per run.
type ChangeSet []Change

// ModuleDiff is the subset of a ChangeSet relevant to one module, split by
// whether the path matched the module's code or test patterns. A path may
// appear in the diffs of several modules when their patterns overlap.
type ModuleDiff struct {
	Module      string
	CodeChanged []Change
	TestChanged []Change
}

// ChangeState is the per-module classification the policy engine branches on.
type ChangeState int

const (
	// NoChange means neither code nor test paths changed.
	NoChange ChangeState = iota
	// CodeOnly means code paths changed with no accompanying test change.
	CodeOnly
	// TestOnly means only test paths changed.
	TestOnly
	// CodeAndTest means both code and test paths changed.
	CodeAndTest
)

// State derives the change state from the diff's two partitions.
func (d ModuleDiff) State() ChangeState {
	switch {
	case len(d.CodeChanged) == 0 && len(d.TestChanged) == 0:
		return NoChange
	case len(d.TestChanged) == 0:
		return CodeOnly
	case len(d.CodeChanged) == 0:
		return TestOnly
	default:
		return CodeAndTest
	}
}

// Empty reports whether the module saw no changes at all.
func (d ModuleDiff) Empty() bool {
	return d.State() == NoChange
}
