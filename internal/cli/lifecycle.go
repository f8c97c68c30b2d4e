package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Replace the draft with a sample cookie recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withWorkspace(func(w *workspace) error {
				snap := w.ctrl.LoadSample()
				if a.jsonMode {
					return printJSON(cmd, snap)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded sample recipe with %d ingredients\n", len(snap.Rows))
				return nil
			})
		},
	}
}

func (a *app) newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new, unsaved draft with default rows and parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withWorkspace(func(w *workspace) error {
				snap := w.ctrl.StartNew()
				if a.jsonMode {
					return printJSON(cmd, snap)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Started a new draft")
				return nil
			})
		},
	}
}

func (a *app) newSaveAsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save-as <name>",
		Short: "Save the draft as a new named session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return a.withWorkspace(func(w *workspace) error {
				rec, err := w.ctrl.SaveAs(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("could not save: %w", err)
				}
				if a.jsonMode {
					return printJSON(cmd, rec)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %s\n", rec.DisplayName, rec.ID)
				return nil
			})
		},
	}
}

func (a *app) newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save changes over the bound session",
		Long: "Save changes over the bound session. Does nothing when the draft is\n" +
			"not bound to a saved session or has no unsaved changes; use save-as then.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withWorkspace(func(w *workspace) error {
				wrote, err := w.ctrl.Save(cmd.Context())
				if err != nil {
					return fmt.Errorf("could not save: %w", err)
				}
				if a.jsonMode {
					return printJSON(cmd, map[string]bool{"saved": wrote})
				}
				out := cmd.OutOrStdout()
				switch {
				case wrote:
					fmt.Fprintf(out, "Saved %q\n", w.ctrl.DisplayName())
				case w.ctrl.BoundID() == "":
					fmt.Fprintln(out, "Nothing to save: draft is not bound to a saved session (use save-as)")
				default:
					fmt.Fprintln(out, "Nothing to save: no unsaved changes")
				}
				return nil
			})
		},
	}
}
