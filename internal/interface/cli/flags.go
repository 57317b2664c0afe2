package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// requireFlags rejects positional arguments and unset flags before any
// journal is touched
func requireFlags(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return usageErrorf("unexpected arguments: %s", strings.Join(args, " "))
		}
		var missing []string
		for _, name := range names {
			if !cmd.Flags().Changed(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return usageErrorf("required flag(s) %q not set", missing)
		}
		return nil
	}
}

func addIDFlag(cmd *cobra.Command, id *string) {
	cmd.Flags().StringVarP(id, "id", "i", "", "test run id")
}

// stateStatus turns a failure count into an exit status
func stateStatus(failed int) error {
	if failed == 0 {
		return nil
	}
	return &ExitError{Code: failed}
}
