package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/costbook/internal/numeric"
	"github.com/mesh-intelligence/costbook/internal/paths"
	"github.com/mesh-intelligence/costbook/internal/sqlite"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend        string `yaml:"backend"`
	DataDir        string `yaml:"data_dir,omitempty"`
	CurrencySymbol string `yaml:"currency_symbol,omitempty"`
	Locale         string `yaml:"locale,omitempty"`
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize costbook storage",
		Long:  "Create the configuration and data directories, then initialize the saved-session store.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	dataDir, err := paths.ResolveDataDir(a.dataDir, loadDataDirFromConfig(configDir))
	if err != nil {
		return systemError(fmt.Errorf("resolve data dir: %w", err))
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return systemError(fmt.Errorf("create config directory: %w", err))
	}
	configPath := filepath.Join(configDir, paths.ConfigFileName)
	if err := writeConfigIfMissing(configPath, dataDir); err != nil {
		return systemError(fmt.Errorf("write config: %w", err))
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := backend.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	a.logger.Debug("initialized", "config", configPath, "data_dir", dataDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Costbook initialized in %s\n", dataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left alone.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := configFile{
		Backend:        types.BackendSQLite,
		DataDir:        dataDir,
		CurrencySymbol: numeric.DefaultCurrencySymbol,
		Locale:         numeric.DefaultLocale,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// loadDataDirFromConfig reads data_dir from an existing config.yaml.
// Returns "" if the file does not exist or cannot be parsed.
func loadDataDirFromConfig(configDir string) string {
	data, err := os.ReadFile(filepath.Join(configDir, paths.ConfigFileName))
	if err != nil {
		return ""
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	return cfg.DataDir
}
