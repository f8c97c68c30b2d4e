package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

// historyEntry is one line of the history listing.
type historyEntry struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Ingredients int        `json:"ingredients"`
	Bound       bool       `json:"bound"`
}

func (a *app) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved sessions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List saved sessions, most recently changed first",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					recs, err := w.ctrl.History(cmd.Context())
					if err != nil {
						return err
					}
					entries := summarize(recs, w.ctrl.BoundID())
					if a.jsonMode {
						return printJSON(cmd, entries)
					}
					writeHistory(cmd.OutOrStdout(), entries)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "load <id>",
			Short: "Replace the draft with a saved session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					rec, err := w.ctrl.Load(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if a.jsonMode {
						return printJSON(cmd, rec)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Loaded %q\n", rec.DisplayName)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete a saved session",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					if err := w.ctrl.Delete(cmd.Context(), args[0]); err != nil {
						return err
					}
					if !a.jsonMode {
						fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write every saved session to a JSON Lines file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					n, err := w.backend.Export(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return a.printCount(cmd, "Exported", n)
				})
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Add or replace saved sessions from a JSON Lines file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withWorkspace(func(w *workspace) error {
					n, err := w.backend.Import(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return a.printCount(cmd, "Imported", n)
				})
			},
		},
	)
	return cmd
}

func (a *app) printCount(cmd *cobra.Command, verb string, n int) error {
	if a.jsonMode {
		return printJSON(cmd, map[string]int{"count": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d sessions\n", verb, n)
	return nil
}

func summarize(recs []*types.SavedSession, boundID string) []historyEntry {
	entries := make([]historyEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, historyEntry{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			Ingredients: len(r.Snapshot.Rows),
			Bound:       boundID != "" && r.ID == boundID,
		})
	}
	return entries
}

func writeHistory(out io.Writer, entries []historyEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved sessions")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tINGREDIENTS\tCREATED\tUPDATED")
	for _, e := range entries {
		marker := ""
		if e.Bound {
			marker = "*"
		}
		updated := "-"
		if e.UpdatedAt != nil {
			updated = e.UpdatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			marker, e.ID, e.DisplayName, e.Ingredients, e.CreatedAt.Local().Format(time.DateTime), updated)
	}
	tw.Flush()
}
