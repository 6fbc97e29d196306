package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/goliatone/go-cascade/config"
	"github.com/goliatone/go-cascade/store"
)

var flagScope string

var setCmd = &cobra.Command{
	Use:   "set <name> <path> <value>",
	Short: "Write a value into one scope of a configuration",
	Long:  "Set writes a value at a dotted path inside a single scope file. JSON scope files are edited in place through a targeted patch; other formats are decoded, modified and re-encoded.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path, raw := args[0], args[1], args[2]
		settings := config.Defaults()

		scope := flagScope
		if scope == "" {
			if len(settings.Scopes) == 0 {
				return fmt.Errorf("no scopes configured")
			}
			scope = settings.Scopes[0].Name
		}

		value := parseValue(raw)
		if settings.Format == "json" {
			return setJSON(settings, name, scope, path, value)
		}
		return setTree(cmd, settings, name, scope, path, value)
	},
}

func init() {
	setCmd.Flags().StringVar(&flagScope, "scope", "", "scope to write into (default: the strongest scope)")
}

// parseValue interprets raw as JSON when possible, else as a plain string.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	if f, ok := value.(float64); ok && f == float64(int(f)) && !strings.ContainsAny(raw, ".eE") {
		return int(f)
	}
	return value
}

// setJSON patches the scope file in place, preserving the rest of the
// document byte for byte.
func setJSON(settings config.Settings, name, scope, path string, value any) error {
	fileStore, err := store.NewFileStore(scopeDirs(settings), settings.Format)
	if err != nil {
		return err
	}
	target, err := fileStore.Path(store.Ref{Config: name, Scope: scope})
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		payload = []byte("{}\n")
	} else if err != nil {
		return err
	}
	patched, err := sjson.SetBytes(payload, path, value)
	if err != nil {
		return err
	}
	return os.WriteFile(target, patched, 0o644)
}

// setTree decodes the scope file, rewrites the path inside the raw tree and
// re-encodes it.
func setTree(cmd *cobra.Command, settings config.Settings, name, scope, path string, value any) error {
	fileStore, err := store.NewFileStore(scopeDirs(settings), settings.Format)
	if err != nil {
		return err
	}
	ref := store.Ref{Config: name, Scope: scope}
	tree, _, ok, err := fileStore.Load(cmd.Context(), ref)
	if err != nil {
		return err
	}
	if !ok {
		tree = map[string]any{}
	}

	segments := strings.Split(path, ".")
	current := tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			if existing, found := current[segment]; found {
				return fmt.Errorf("path %q crosses non-mapping value %v", path, existing)
			}
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value

	_, err = fileStore.Save(cmd.Context(), ref, tree, store.Meta{})
	return err
}

func scopeDirs(settings config.Settings) map[string]string {
	dirs := make(map[string]string, len(settings.Scopes))
	for _, scope := range settings.Scopes {
		dirs[scope.Name] = scope.Dir
	}
	return dirs
}
