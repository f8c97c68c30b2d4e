package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

func (a *app) newRowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "row",
		Aliases: []string{"rows"},
		Short:   "Edit the draft's ingredient rows",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List ingredient rows with their costs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					return a.printRows(cmd, w, w.ctrl.Rows())
				})
			},
		},
		&cobra.Command{
			Use:   "add",
			Short: "Append a blank ingredient row",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					rows := w.ctrl.AddRow()
					if a.jsonMode {
						return printJSON(cmd, rows[len(rows)-1])
					}
					fmt.Fprintln(cmd.OutOrStdout(), rows[len(rows)-1].ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <id> <field> <value>",
			Short: "Set one field of an ingredient row",
			Long: "Set one field of an ingredient row.\n\nFields: " +
				strings.Join(types.IngredientFields, ", ") +
				"\n\nValues are kept as typed; text that is not a number counts as 0 in costing.",
			Args: cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					rows, err := w.ctrl.UpdateRowField(args[0], args[1], args[2])
					if err != nil {
						return fmt.Errorf("set row %s %s: %w", args[0], args[1], err)
					}
					return a.printRows(cmd, w, rows)
				})
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete an ingredient row",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					return a.printRows(cmd, w, w.ctrl.DeleteRow(args[0]))
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Replace all rows with blank ones, keeping the parameters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					return a.printRows(cmd, w, w.ctrl.ClearRows())
				})
			},
		},
	)
	return cmd
}

func (a *app) printRows(cmd *cobra.Command, w *workspace, rows []types.IngredientRow) error {
	if a.jsonMode {
		return printJSON(cmd, rows)
	}
	w.writeRows(cmd.OutOrStdout(), rows, w.ctrl.Figures())
	return nil
}
