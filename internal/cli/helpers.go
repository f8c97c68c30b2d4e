package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/costbook/internal/draft"
	"github.com/mesh-intelligence/costbook/internal/numeric"
	"github.com/mesh-intelligence/costbook/internal/paths"
	"github.com/mesh-intelligence/costbook/internal/session"
	"github.com/mesh-intelligence/costbook/internal/slot"
	"github.com/mesh-intelligence/costbook/internal/sqlite"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// workspace is everything a command needs to act on the draft and the
// saved sessions.
type workspace struct {
	ctrl    *session.Controller
	backend *sqlite.Backend
	format  *numeric.Formatter
}

// withWorkspace attaches the saved-session store, restores the autosaved
// draft and runs fn. The store is detached afterwards.
func (a *app) withWorkspace(fn func(w *workspace) error) error {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.settings.DataDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve data dir: %w", err))
	}

	backend := sqlite.NewBackend()
	cfg := types.Config{Backend: a.settings.Backend, DataDir: dataDir}
	if err := backend.Attach(cfg); err != nil {
		return fmt.Errorf("attach backend: %w", err)
	}
	defer func() {
		if err := backend.Detach(); err != nil {
			a.logger.Warn("detach backend", "error", err)
		}
	}()

	w := &workspace{
		ctrl: session.NewController(
			draft.NewStore(nil),
			backend,
			slot.NewFile(paths.SlotDir(dataDir), a.logger),
			session.WithLogger(a.logger),
		),
		backend: backend,
		format:  numeric.NewFormatter(a.settings.CurrencySymbol, a.settings.Locale),
	}
	return fn(w)
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return systemError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
