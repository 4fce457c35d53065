package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "testgate.dev/pkg/testgate/internal/model"
)

var (
	passStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	skipStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inconclusiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	bypassStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// SimpleUI implements UI with plain line output through the cobra command,
// suitable for CI logs.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI (no-op for SimpleUI).
func (s *SimpleUI) Close(_ context.Context) {}

// DisplayBypass announces that the whole evaluation was skipped.
func (s *SimpleUI) DisplayBypass(ctx context.Context, label string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n", bypassStyle.Render(fmt.Sprintf(
		"BYPASS: label %q set, skipping all policy checks (no tests executed)", label)))
}

// DisplayRunPlan shows what the run is about to evaluate.
func (s *SimpleUI) DisplayRunPlan(ctx context.Context, baseline, candidate m.Revision, modules, workers int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Evaluating %d module(s): %s -> %s (%d worker(s))\n", modules, baseline, candidate, workers)
}

// DisplayModuleStarted shows that a module's evaluation began.
func (s *SimpleUI) DisplayModuleStarted(ctx context.Context, module string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Checking module %s\n", module)
}

// DisplayModuleVerdict shows one module's terminal state.
func (s *SimpleUI) DisplayModuleVerdict(ctx context.Context, verdict m.Verdict) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Module %s: %s\n", verdict.Module, renderState(verdict))
}

// DisplaySummary renders the per-module table and the overall line.
func (s *SimpleUI) DisplaySummary(ctx context.Context, verdicts []m.Verdict, overall m.Overall) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(verdicts))

	for _, v := range verdicts {
		if v.Output != "" {
			s.printf("\n--- %s output ---\n%s\n", v.Module, v.Output)
		}
	}

	s.printf("\nOVERALL: %s\n", renderOverall(overall))

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}

func renderState(verdict m.Verdict) string {
	label := string(verdict.State)
	if verdict.Reason != "" {
		label = fmt.Sprintf("%s (%s)", verdict.State, verdict.Reason)
	}

	styled := label

	switch verdict.State {
	case m.VerdictCompliant:
		styled = passStyle.Render(label)
	case m.VerdictViolation:
		styled = failStyle.Render(label)
	case m.VerdictSkipped:
		styled = skipStyle.Render(label)
	case m.VerdictInconclusive:
		styled = inconclusiveStyle.Render(label)
	}

	if verdict.Detail != "" {
		styled += ": " + verdict.Detail
	}

	return styled
}

func renderOverall(overall m.Overall) string {
	if overall == m.OverallPass {
		return passStyle.Render(string(overall))
	}

	return failStyle.Render(string(overall))
}

func renderSummaryTable(verdicts []m.Verdict) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Module", "Verdict", "Reason", "Detail"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})

	for _, v := range verdicts {
		table.Append([]string{v.Module, string(v.State), string(v.Reason), v.Detail})
	}

	table.Render()

	return buffer.String()
}
