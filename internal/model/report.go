package model

// RunReport is the persisted result of one policy evaluation run, saved to
// the output directory so CI can attach it as an artifact.
type RunReport struct {
	Baseline  Revision     `json:"baseline"`
	Candidate Revision     `json:"candidate"`
	Overrides RunOverrides `json:"overrides"`
	Verdicts  []Verdict    `json:"verdicts"`
	Overall   Overall      `json:"overall"`
}
