package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"testgate.dev/pkg/testgate/internal/adapter"
)

var gitAdapter adapter.GitAdapter
var configStore adapter.ConfigStore
var eventAdapter adapter.EventAdapter
var reportStore adapter.ReportStore

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// modulesFileFlag points at the declarative modules document.
var modulesFileFlag string

// repoFlag is the repository the two revisions live in.
var repoFlag string

// noTUIFlag forces plain line output even on a terminal.
var noTUIFlag bool

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	gitAdapter = adapter.NewExecGitAdapter()
	configStore = adapter.NewYAMLConfigStore()
	eventAdapter = adapter.NewGitHubEventAdapter()
	reportStore = adapter.NewJSONReportStore()
}

const rootLongDescription = `Testgate enforces a test-contribution policy on pull requests: code changes
must come with test changes, and newly added tests must be meaningful (they
fail against the unmodified baseline and pass against the proposed change).

Modules, their code/test glob patterns and their test commands are declared
in a modules document (default: ` + defaultModulesFile + `).`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testgate",
		Short: "Test contribution policy gate for pull requests",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(&modulesFileFlag, modulesFlagName, "m", viper.GetString(modulesFlagName), "path to the modules document")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(modulesFlagName), modulesFlagName)

	cmd.PersistentFlags().StringVar(&repoFlag, repoFlagName, viper.GetString(repoFlagName), "path to the git repository under evaluation")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(repoFlagName), repoFlagName)

	cmd.PersistentFlags().BoolVar(&noTUIFlag, noTUIFlagName, viper.GetBool(noTUIFlagName), "disable the interactive progress view")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noTUIFlagName), noTUIFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
