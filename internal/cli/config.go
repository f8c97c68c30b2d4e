package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/costbook/internal/numeric"
	"github.com/mesh-intelligence/costbook/internal/paths"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyCurrencySymbol = "currency_symbol"
	cfgKeyLocale         = "locale"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Costbook configuration

# Backend selection
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Money display
currency_symbol: "₱"
locale: en
`

// settings is the resolved content of config.yaml.
type settings struct {
	Backend        string
	DataDir        string
	CurrencySymbol string
	Locale         string
}

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run.
func loadConfig(configDir string) (settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyCurrencySymbol, numeric.DefaultCurrencySymbol)
	v.SetDefault(cfgKeyLocale, numeric.DefaultLocale)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	return settings{
		Backend:        v.GetString(cfgKeyBackend),
		DataDir:        v.GetString(cfgKeyDataDir),
		CurrencySymbol: v.GetString(cfgKeyCurrencySymbol),
		Locale:         v.GetString(cfgKeyLocale),
	}, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
