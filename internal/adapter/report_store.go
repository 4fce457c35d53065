package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	m "testgate.dev/pkg/testgate/internal/model"
)

// reportFileName is the fixed name of the persisted run report inside the
// output directory.
const reportFileName = "testgate-report.json"

// ReportStore persists the verdicts produced by a run so CI can surface
// them as an artifact.
type ReportStore interface {
	SaveReport(dir m.Path, report m.RunReport) error
	LoadReport(dir m.Path) (m.RunReport, error)
}

// JSONReportStore writes the run report as pretty-printed JSON.
type JSONReportStore struct{}

// NewJSONReportStore constructs a JSONReportStore.
func NewJSONReportStore() *JSONReportStore {
	return &JSONReportStore{}
}

// SaveReport writes the report into dir, creating it when missing.
func (s *JSONReportStore) SaveReport(dir m.Path, report m.RunReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("failed to create report dir %q: %w", dir, err)
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	target := filepath.Join(string(dir), reportFileName)
	if err := os.WriteFile(target, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write report %q: %w", target, err)
	}

	return nil
}

// LoadReport reads a previously saved report back from dir.
func (s *JSONReportStore) LoadReport(dir m.Path) (m.RunReport, error) {
	target := filepath.Join(string(dir), reportFileName)

	raw, err := os.ReadFile(target)
	if err != nil {
		return m.RunReport{}, fmt.Errorf("failed to read report %q: %w", target, err)
	}

	var report m.RunReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("failed to parse report %q: %w", target, err)
	}

	return report, nil
}
