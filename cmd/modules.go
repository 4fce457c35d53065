package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testgate.dev/pkg/testgate/internal/domain"
	m "testgate.dev/pkg/testgate/internal/model"
)

// modulesCmd represents the modules command.
var modulesCmd = newModulesCmd()

func newModulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the configured modules",
		Long:  "Load the modules document and show each module's patterns, commands and test granularity.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modules, err := configStore.LoadModules(m.Path(viper.GetString(modulesFlagName)))
			if err != nil {
				return err
			}

			registry, err := domain.NewRegistry(modules)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Module", "Code Patterns", "Test Patterns", "Setup", "Granularity"})
			table.SetBorder(false)
			table.SetCenterSeparator("")

			for _, module := range registry.Modules() {
				granularity := "file"
				if module.NamedGranularity() {
					granularity = "named"
				}

				table.Append([]string{
					module.Name,
					fmt.Sprintf("%d", len(module.CodeRules)),
					fmt.Sprintf("%d", len(module.TestRules)),
					fmt.Sprintf("%d", len(module.Setup)),
					granularity,
				})
			}

			table.Render()

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}
