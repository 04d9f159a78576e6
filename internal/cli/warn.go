package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chextra/pkg/caller"
	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/extras"
)

// warnOpts holds the command-line flags for the warn command.
type warnOpts struct {
	module string // dotted module name used to guess package and extra
	eager  bool   // fail when dependencies are missing
}

// warnCommand creates the warn command.
func (c *CLI) warnCommand() *cobra.Command {
	var opts warnOpts

	cmd := &cobra.Command{
		Use:   "warn [package [extra...]]",
		Short: "Warn if the dependencies of an extra are not installed",
		Long: `Check that every dependency of the given extras is installed.

A warning is printed for every extra with missing dependencies. With --eager
the command also fails, listing everything that is missing.

When the package or extras are omitted they are guessed from --module: the
first segment names the package and the last one the extra.

Examples:
  chextra warn acme viz
  chextra warn acme viz cli --eager
  chextra warn --module acme.viz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := extras.Request{Caller: caller.FromModule(opts.module)}
			if len(args) > 0 {
				req.Package, req.Extras = args[0], args[1:]
			}
			if err := validateRequest(req); err != nil {
				return err
			}

			env, err := c.newEnvironment()
			if err != nil {
				return err
			}
			req.Eager = opts.eager
			if !cmd.Flags().Changed("eager") {
				req.Eager = env.config.Eager
			}

			out := cmd.OutOrStdout()
			reported := 0
			reporter := extras.ReporterFunc(func(d extras.Diagnostic) {
				reported++
				c.Logger.Debug("Diagnostic", "kind", d.Kind, "package", d.Package, "extra", d.Extra)
				switch d.Kind {
				case extras.KindMissingExtra:
					printWarning(out, "%s is not fully installed", d.InstallHint())
					printDetail(out, "missing: %s", strings.Join(d.Missing, ", "))
					printNextStep(out, "Install it", "pip install "+d.InstallHint())
				default:
					printWarning(out, "%s", d.Message)
					printNextStep(out, "Pass both explicitly", "chextra warn <package> <extra>")
				}
			})

			checker := extras.NewChecker(env.source, nil, reporter)
			if err := checker.Warn(cmd.Context(), req); err != nil {
				return err
			}
			if reported == 0 {
				printSuccess(out, "All requested extras are installed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "dotted module name to guess package and extra from")
	cmd.Flags().BoolVar(&opts.eager, "eager", false, "fail if any dependency is missing")

	return cmd
}

// validateRequest rejects malformed names before touching the filesystem.
func validateRequest(req extras.Request) error {
	if req.Package != "" {
		if err := errors.ValidatePythonPackageName(req.Package); err != nil {
			return err
		}
	}
	for _, e := range req.Extras {
		if err := errors.ValidateExtraName(e); err != nil {
			return err
		}
	}
	return nil
}
