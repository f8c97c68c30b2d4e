// Package cli implements the costbook command-line interface, a thin driver
// over the draft, the lifecycle controller and the saved-session store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/costbook/internal/paths"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds global flag values and the state loaded before each command.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool

	settings settings
	logger   *slog.Logger
}

// NewRootCmd creates the top-level "costbook" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	root := &cobra.Command{
		Use:   "costbook",
		Short: "Recipe costing and pricing calculator",
		Long: "Costbook computes ingredient, overhead and labor costs for a batch recipe,\n" +
			"suggests prices, and keeps named saved sessions of your recipes.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: per-user config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newShowCmd())
	root.AddCommand(a.newStatusCmd())
	root.AddCommand(a.newRowCmd())
	root.AddCommand(a.newParamCmd())
	root.AddCommand(a.newSampleCmd())
	root.AddCommand(a.newNewCmd())
	root.AddCommand(a.newSaveAsCmd())
	root.AddCommand(a.newSaveCmd())
	root.AddCommand(a.newHistoryCmd())

	return root
}

// setup installs the logger and loads config.yaml. init manages its own
// config file and version needs none.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	switch cmd.Name() {
	case "version", "init":
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	s, err := loadConfig(configDir)
	if err != nil {
		return systemError(err)
	}
	a.settings = s
	a.logger.Debug("config loaded", "config_dir", configDir, "backend", s.Backend)
	return nil
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "costbook:", err)
	}
	os.Exit(exitCode(err))
}

// sysError marks an error as a system failure rather than a user mistake.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

func systemError(err error) error {
	if err == nil {
		return nil
	}
	return sysError{err}
}

// exitCode maps an error to a process exit code. Storage failures and
// errors marked with systemError are system errors; everything else is the
// user's to fix.
func exitCode(err error) int {
	var se sysError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &se),
		errors.Is(err, types.ErrStorageUnavailable),
		errors.Is(err, types.ErrTransactionFailed):
		return exitSysError
	default:
		return exitUserError
	}
}
