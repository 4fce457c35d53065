package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "testgate.dev/pkg/testgate/internal/model"
)

// TUI implements UI with a live Bubble Tea view for local, interactive runs:
// one row per module with a spinner while its checks execute and the verdict
// once it finishes.
type TUI struct {
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI() *TUI {
	return &TUI{done: make(chan struct{})}
}

type planMsg struct {
	baseline  m.Revision
	candidate m.Revision
	workers   int
}

type bypassMsg struct{ label string }

type moduleStartedMsg struct{ module string }

type verdictMsg struct{ verdict m.Verdict }

type summaryMsg struct {
	verdicts []m.Verdict
	overall  m.Overall
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	t.program = tea.NewProgram(newRunModel(config.modules))

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			fmt.Println("display error:", err)
		}
	}()

	return nil
}

// Close stops the program and waits for the final frame.
func (t *TUI) Close(_ context.Context) {
	if t.program == nil {
		return
	}

	t.program.Quit()
	<-t.done
}

// DisplayBypass announces the short-circuit.
func (t *TUI) DisplayBypass(_ context.Context, label string) {
	t.send(bypassMsg{label: label})
}

// DisplayRunPlan shows what the run is about to evaluate.
func (t *TUI) DisplayRunPlan(_ context.Context, baseline, candidate m.Revision, _, workers int) {
	t.send(planMsg{baseline: baseline, candidate: candidate, workers: workers})
}

// DisplayModuleStarted marks a module row as running.
func (t *TUI) DisplayModuleStarted(_ context.Context, module string) {
	t.send(moduleStartedMsg{module: module})
}

// DisplayModuleVerdict fills in a module row's terminal state.
func (t *TUI) DisplayModuleVerdict(_ context.Context, verdict m.Verdict) {
	t.send(verdictMsg{verdict: verdict})
}

// DisplaySummary shows the overall result and ends the program.
func (t *TUI) DisplaySummary(ctx context.Context, verdicts []m.Verdict, overall m.Overall) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(summaryMsg{verdicts: verdicts, overall: overall})
	<-t.done

	return nil
}

func (t *TUI) send(msg tea.Msg) {
	if t.program == nil {
		return
	}

	t.program.Send(msg)
}

type moduleRowState int

const (
	rowPending moduleRowState = iota
	rowRunning
	rowDone
)

type moduleRow struct {
	name    string
	state   moduleRowState
	verdict m.Verdict
}

// runModel is the Bubble Tea model for a policy run in progress.
type runModel struct {
	spinner  spinner.Model
	rows     []moduleRow
	byName   map[string]int
	plan     string
	bypass   string
	overall  m.Overall
	finished bool
}

func newRunModel(modules []string) runModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	rows := make([]moduleRow, 0, len(modules))
	byName := make(map[string]int, len(modules))

	for i, name := range modules {
		rows = append(rows, moduleRow{name: name})
		byName[name] = i
	}

	return runModel{spinner: sp, rows: rows, byName: byName}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return rm, tea.Quit
		}

	case planMsg:
		rm.plan = fmt.Sprintf("%s -> %s (%d worker(s))", msg.baseline, msg.candidate, msg.workers)

	case bypassMsg:
		rm.bypass = msg.label

	case moduleStartedMsg:
		if i, ok := rm.byName[msg.module]; ok {
			rm.rows[i].state = rowRunning
		}

	case verdictMsg:
		if i, ok := rm.byName[msg.verdict.Module]; ok {
			rm.rows[i].state = rowDone
			rm.rows[i].verdict = msg.verdict
		}

	case summaryMsg:
		rm.finished = true
		rm.overall = msg.overall

		for _, verdict := range msg.verdicts {
			if i, ok := rm.byName[verdict.Module]; ok {
				rm.rows[i].state = rowDone
				rm.rows[i].verdict = verdict
			}
		}

		return rm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd
	}

	return rm, nil
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString("testgate: test contribution policy\n")

	if rm.plan != "" {
		b.WriteString(rm.plan + "\n")
	}

	b.WriteString("\n")

	if rm.bypass != "" {
		b.WriteString(bypassStyle.Render(fmt.Sprintf("BYPASS: label %q set, skipping all policy checks", rm.bypass)))
		b.WriteString("\n")
	}

	for _, row := range rm.rows {
		switch row.state {
		case rowPending:
			fmt.Fprintf(&b, "  · %s\n", row.name)
		case rowRunning:
			fmt.Fprintf(&b, "  %s %s\n", rm.spinner.View(), row.name)
		case rowDone:
			fmt.Fprintf(&b, "  %s: %s\n", row.name, renderState(row.verdict))
		}
	}

	if rm.finished {
		fmt.Fprintf(&b, "\nOVERALL: %s\n", renderOverall(rm.overall))
	}

	return b.String()
}
