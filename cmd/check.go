package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testgate.dev/pkg/testgate/internal/adapter"
	"testgate.dev/pkg/testgate/internal/controller"
	"testgate.dev/pkg/testgate/internal/domain"
	m "testgate.dev/pkg/testgate/internal/model"
	"testgate.dev/pkg/testgate/pkg"
)

// errPolicyFailed signals a FAIL verdict, mapped to a non-zero exit code.
var errPolicyFailed = errors.New("test contribution policy check failed")

var checkBaseFlag string
var checkHeadFlag string
var checkLabelsFlag []string
var checkEventFlag string
var checkParallelFlag int

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the test contribution policy between two revisions",
		Long: `Classify the changes between a baseline and a candidate revision per module,
detect newly added tests, run them against the baseline (they must fail) and
the full suite against the candidate (it must pass), and exit non-zero on any
violation.

Revisions and labels come from flags or from a GitHub Actions pull_request
event payload passed via --event.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkBaseFlag, "base", "", "baseline revision (defaults to the event payload's base SHA)")
	cmd.Flags().StringVar(&checkHeadFlag, "head", "", "candidate revision (defaults to the event payload's head SHA)")
	cmd.Flags().StringArrayVarP(&checkLabelsFlag, "label", "l", nil, "pull request label (can be repeated)")
	cmd.Flags().StringVar(&checkEventFlag, "event", os.Getenv("GITHUB_EVENT_PATH"), "path to a pull_request event payload")
	cmd.Flags().IntVarP(&checkParallelFlag, checkParallelFlagName, "p", viper.GetInt(checkParallelConfigKey), "number of modules evaluated concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(checkParallelFlagName), checkParallelConfigKey)
}

func runCheck(cmd *cobra.Command) error {
	baseline, candidate, labels, err := resolveInputs()
	if err != nil {
		return err
	}

	modules, err := configStore.LoadModules(m.Path(viper.GetString(modulesFlagName)))
	if err != nil {
		return err
	}

	registry, err := domain.NewRegistry(modules)
	if err != nil {
		return err
	}

	repo := viper.GetString(repoFlagName)
	timeout := time.Duration(viper.GetInt(commandTimeoutKey)) * time.Second
	commandRunner := adapter.NewLocalCommandRunner(timeout)

	runLog, err := pkg.NewRunLog[m.TestRunResult]("testgate-runs")
	if err != nil {
		return fmt.Errorf("failed to create run log: %w", err)
	}

	defer func() { _ = runLog.Close() }()

	slog.Info("Recording test executions", "path", runLog.Path())

	runner := domain.NewRecordingRunner(domain.NewRunner(gitAdapter, commandRunner, repo), runLog)
	detector := domain.NewDetector(gitAdapter, repo)
	classifier := domain.NewClassifier(gitAdapter, repo, registry)
	engine := domain.NewEngine(detector, runner, viper.GetBool(allowTestRefactorKey))

	var ui controller.UI
	if controller.IsTTY(os.Stdout) && !viper.GetBool(noTUIFlagName) {
		ui = controller.NewTUI()
	} else {
		ui = controller.NewSimpleUI(cmd)
	}

	workflow := domain.NewWorkflow(registry, classifier, engine, ui, reportStore)

	bypassLabel := viper.GetString(bypassLabelKey)
	overrides := m.RunOverrides{
		Bypass:             slices.Contains(labels, bypassLabel),
		RegressionRequired: slices.Contains(labels, viper.GetString(regressionLabelKey)),
	}

	overall, err := workflow.Check(cmd.Context(), domain.CheckArgs{
		Baseline:    baseline,
		Candidate:   candidate,
		Overrides:   overrides,
		BypassLabel: bypassLabel,
		Workers:     viper.GetInt(checkParallelConfigKey),
		Reports:     m.Path(viper.GetString(outputFlagName)),
	})
	if err != nil {
		return err
	}

	if overall == m.OverallFail {
		return errPolicyFailed
	}

	return nil
}

// resolveInputs merges explicit flags with the event payload: flags win when
// both are present, the payload fills in whatever the flags left out.
func resolveInputs() (m.Revision, m.Revision, []string, error) {
	baseline := m.Revision(checkBaseFlag)
	candidate := m.Revision(checkHeadFlag)
	labels := append([]string(nil), checkLabelsFlag...)

	if checkEventFlag != "" {
		inputs, err := eventAdapter.ReadPullRequestEvent(checkEventFlag)
		if err != nil {
			return "", "", nil, err
		}

		if baseline == "" {
			baseline = inputs.Baseline
		}

		if candidate == "" {
			candidate = inputs.Candidate
		}

		labels = append(labels, inputs.Labels...)
	}

	if baseline == "" || candidate == "" {
		return "", "", nil, errors.New("both a baseline and a candidate revision are required (use --base/--head or --event)")
	}

	return baseline, candidate, labels, nil
}
