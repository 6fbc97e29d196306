package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cascade/config"
	"github.com/goliatone/go-cascade/format"
)

var flagValidate bool

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Display the merged configuration with per-line provenance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, _, err := config.Load(cmd.Context(), name)
		if err != nil {
			return err
		}
		if flagValidate {
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}

		settings := config.Defaults()
		formatter, err := format.Lookup(settings.Format)
		if err != nil {
			return err
		}
		lines, scopes, err := format.PrettyPrint(formatter, cfg, nil)
		if err != nil {
			return err
		}

		width := 0
		for _, line := range lines {
			if len(line) > width {
				width = len(line)
			}
		}
		out := cmd.OutOrStdout()
		for i, line := range lines {
			provenance := ""
			if len(scopes[i]) > 0 {
				provenance = "[" + strings.Join(scopes[i], ", ") + "]"
			}
			fmt.Fprintf(out, "%-*s  %s\n", width, line, provenance)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&flagValidate, "validate", false, "validate the configuration against its schema and rules")
}
