package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/goliatone/go-cascade/config"
)

var getCmd = &cobra.Command{
	Use:   "get <name> <path>",
	Short: "Resolve a dotted path against the merged configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]
		cfg, _, err := config.Load(cmd.Context(), name)
		if err != nil {
			return err
		}
		tree, err := cfg.Export()
		if err != nil {
			return err
		}
		payload, err := json.Marshal(tree)
		if err != nil {
			return err
		}

		result := gjson.GetBytes(payload, path)
		if !result.Exists() {
			// Overrides land in the exported tree under their marked
			// spelling; retry the last segment with the marker.
			result = gjson.GetBytes(payload, path+`\:`)
		}
		if !result.Exists() {
			return fmt.Errorf("path %q not found in configuration %q", path, name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
		return nil
	},
}
