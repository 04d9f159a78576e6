package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/extras"
)

// extrasCommand creates the extras command, which prints a distribution's
// dependencies grouped by extra.
func (c *CLI) extrasCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extras <package>",
		Short: "Show a distribution's dependencies grouped by extra",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := args[0]
			if err := errors.ValidatePythonPackageName(pkg); err != nil {
				return err
			}
			env, err := c.newEnvironment()
			if err != nil {
				return err
			}
			groups, err := extras.NewGrouper(env.source, nil).Groups(cmd.Context(), pkg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(groups)
			}

			printTitle(out, pkg)
			required, _ := groups.Deps("")
			printKeyValue(out, "(required)", joinDeps(required))
			for _, extra := range groups.Extras() {
				deps, _ := groups.Deps(extra)
				printKeyValue(out, extra, joinDeps(deps))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print groups as JSON")

	return cmd
}

func joinDeps(deps []string) string {
	if len(deps) == 0 {
		return "-"
	}
	return strings.Join(deps, ", ")
}
