package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const starterModulesDocument = `modules:
  - name: core
    code_patterns:
      - "src/**/*.py"
      - "!src/**/conftest.py"
    test_patterns:
      - "tests/**/test_*.py"
    setup_commands:
      - "pip install -r requirements.txt"
    run_new_tests_command: "pytest {tests}"
    run_all_tests_command: "pytest tests"
    test_name_pattern: '(?m)^def (test_\w+)'
`

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate default testgate configuration files",
		Long: `Create a testgate.yaml in the current working directory populated with the
current CLI defaults, plus a starter modules document, so both can be edited
manually.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			if err := viper.SafeWriteConfigAs(targetPath); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			modulesPath := filepath.Join(configFolderPath, defaultModulesFile)
			if _, err := os.Stat(modulesPath); err == nil {
				return fmt.Errorf("modules document %q already exists", modulesPath)
			}

			if err := os.WriteFile(modulesPath, []byte(starterModulesDocument), 0o600); err != nil {
				return fmt.Errorf("failed to write modules document: %w", err)
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
