package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chextra/pkg/pep508"
)

// installedCommand creates the installed command, which lists the
// distributions found on the search path.
func (c *CLI) installedCommand() *cobra.Command {
	var versions bool

	cmd := &cobra.Command{
		Use:   "installed",
		Short: "List installed distributions",
		Long: `List the distributions installed on the search path by normalized name.

With --versions, each line also carries the version from the distribution's
metadata. Entries whose metadata cannot be read are only listed without it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := c.newEnvironment()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if versions {
				dists, err := env.site.Distributions(cmd.Context())
				if err != nil {
					return err
				}
				sort.Slice(dists, func(i, j int) bool {
					return pep508.NormalizeName(dists[i].Name) < pep508.NormalizeName(dists[j].Name)
				})
				for _, d := range dists {
					fmt.Fprintf(out, "%s %s\n", pep508.NormalizeName(d.Name), d.Version)
				}
				c.Logger.Info(fmt.Sprintf("Found %d distributions", len(dists)), "paths", env.paths)
				return nil
			}

			set, err := env.source.Installed(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range set.Names() {
				fmt.Fprintln(out, name)
			}
			c.Logger.Info(fmt.Sprintf("Found %d distributions", len(set)), "paths", env.paths)
			return nil
		},
	}

	cmd.Flags().BoolVar(&versions, "versions", false, "print the version of each distribution")

	return cmd
}
