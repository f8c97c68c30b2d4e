package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

func (a *app) newParamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "param",
		Aliases: []string{"params"},
		Short:   "Edit the draft's cost parameters",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cost parameters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					return a.printParams(cmd, w.ctrl.Parameters())
				})
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Set one cost parameter",
			Long:  "Set one cost parameter.\n\nNames: " + strings.Join(types.ParameterNames, ", "),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					p, err := w.ctrl.SetParameter(args[0], args[1])
					if err != nil {
						return fmt.Errorf("set parameter %s: %w", args[0], err)
					}
					return a.printParams(cmd, p)
				})
			},
		},
		&cobra.Command{
			Use:   "reset <name>...",
			Short: "Restore cost parameters to their defaults",
			Long:  "Restore cost parameters to their defaults.\n\nNames: " + strings.Join(types.ParameterNames, ", "),
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					p := w.ctrl.Parameters()
					for _, name := range args {
						def, err := types.ParameterDefault(name)
						if err != nil {
							return fmt.Errorf("reset parameter %s: %w", name, err)
						}
						if p, err = w.ctrl.SetParameter(name, def); err != nil {
							return fmt.Errorf("reset parameter %s: %w", name, err)
						}
					}
					return a.printParams(cmd, p)
				})
			},
		},
	)
	return cmd
}

func (a *app) printParams(cmd *cobra.Command, p types.CostParameters) error {
	if a.jsonMode {
		return printJSON(cmd, p)
	}
	writeParams(cmd.OutOrStdout(), p)
	return nil
}

func writeParams(out io.Writer, p types.CostParameters) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range types.ParameterNames {
		v, _ := p.Get(name)
		fmt.Fprintf(tw, "%s\t%s\n", name, v)
	}
	tw.Flush()
}
