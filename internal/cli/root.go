// Package cli implements the cascade command line tool: viewing, querying
// and editing named hierarchical configurations.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cascade/config"
)

var (
	flagConfiguration string
	flagFormat        string
)

var rootCmd = &cobra.Command{
	Use:           "cascade",
	Short:         "Manage hierarchical configuration files",
	Long:          "Cascade merges per-scope configuration files into a single layered view and lets you inspect, query and edit it.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfiguration
		if path == "" {
			found, err := config.SearchFileInPath("", config.SettingsFileName)
			if err != nil {
				return fmt.Errorf("cascade configuration: %w", err)
			}
			path = found
		}
		if _, err := config.SetupFromFile(path); err != nil {
			return err
		}
		if flagFormat != "" {
			return config.SetDefaultFormat(flagFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfiguration, "configuration", "", "settings file for cascade (default: search for "+config.SettingsFileName+" upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "format of the configuration files")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
}

// Run executes the root command and returns an exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
