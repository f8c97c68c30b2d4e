package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/costbook/internal/costing"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// statusView is the JSON shape of the status command.
type statusView struct {
	State       string `json:"state"`
	BoundID     string `json:"bound_id,omitempty"`
	DisplayName string `json:"display_name"`
	CanSave     bool   `json:"can_save"`
}

// showView is the JSON shape of the show command.
type showView struct {
	statusView
	Snapshot types.Snapshot  `json:"snapshot"`
	Figures  costing.Figures `json:"figures"`
}

func (w *workspace) status() statusView {
	return statusView{
		State:       w.ctrl.State().String(),
		BoundID:     w.ctrl.BoundID(),
		DisplayName: w.ctrl.DisplayName(),
		CanSave:     w.ctrl.CanSave(),
	}
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the draft is bound to a saved session and has unsaved changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withWorkspace(func(w *workspace) error {
				st := w.status()
				if a.jsonMode {
					return printJSON(cmd, st)
				}
				writeStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func writeStatus(out io.Writer, st statusView) {
	switch {
	case st.BoundID == "":
		fmt.Fprintf(out, "%s (not saved)\n", st.DisplayName)
	case st.CanSave:
		fmt.Fprintf(out, "%s [%s] (unsaved changes)\n", st.DisplayName, st.BoundID)
	default:
		fmt.Fprintf(out, "%s [%s] (saved)\n", st.DisplayName, st.BoundID)
	}
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the draft recipe with its costs and suggested prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withWorkspace(func(w *workspace) error {
				view := showView{
					statusView: w.status(),
					Snapshot:   w.ctrl.Snapshot(),
					Figures:    w.ctrl.Figures(),
				}
				if a.jsonMode {
					return printJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				writeStatus(out, view.statusView)
				fmt.Fprintln(out)
				w.writeRows(out, view.Snapshot.Rows, view.Figures)
				fmt.Fprintln(out)
				w.writeFigures(out, view.Figures)
				return nil
			})
		},
	}
}

func (w *workspace) writeRows(out io.Writer, rows []types.IngredientRow, f costing.Figures) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPACK PRICE\tPACK QTY\tNEEDED\tUNIT COST\tLINE COST")
	for _, r := range rows {
		rf, _ := f.Row(r.ID)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.PackPrice, r.PackQuantity, r.AmountNeeded,
			w.format.Currency(rf.UnitCost), w.format.Currency(rf.LineCost))
	}
	tw.Flush()
}

func (w *workspace) writeFigures(out io.Writer, f costing.Figures) {
	c := w.format.Currency
	p := w.format.Percent

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Ingredients\t%s\n", c(f.IngredientsTotal))
	fmt.Fprintf(tw, "Overhead (%s)\t%s\n", p(f.OverheadRate*100), c(f.OverheadAmount))
	fmt.Fprintf(tw, "Subtotal\t%s\n", c(f.Subtotal))
	fmt.Fprintf(tw, "Labor (%s)\t%s\n", p(f.LaborRate*100), c(f.LaborAmount))
	fmt.Fprintf(tw, "Packaging\t%s\n", c(f.Packaging))
	fmt.Fprintf(tw, "Total\t%s\n", c(f.Total))
	fmt.Fprintf(tw, "Per item (yield %g)\t%s\n", f.Yield, c(f.PerItemInclusive))
	fmt.Fprintf(tw, "Per item, ingredients only\t%s\n", c(f.PerItemIngredientsOnly))
	fmt.Fprintf(tw, "Profit per batch\t%s\n", c(f.ProfitBatch))
	fmt.Fprintf(tw, "Profit per item\t%s\n", c(f.ProfitPerItem))
	fmt.Fprintf(tw, "Profit margin\t%s\n", p(f.ProfitMarginPercent))
	fmt.Fprintf(tw, "Recommended batch price\t%s\n", c(f.RecommendedBatchPrice))
	fmt.Fprintf(tw, "Recommended item price\t%s\n", c(f.RecommendedPerItemPrice))
	fmt.Fprintf(tw, "Wholesale price\t%s\n", c(f.WholesalePrice))
	fmt.Fprintf(tw, "Retail price\t%s\n", c(f.RetailPrice))
	tw.Flush()
}
