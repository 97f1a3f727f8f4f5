package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataFile     = "data_file"
	cfgKeyFormat       = "format"
	cfgKeyCompact      = "compact"
	cfgKeySyncStrategy = "sync_strategy"
	cfgKeyBatchSize    = "batch_size"
)

// configHeader precedes the generated config.yaml.
const configHeader = `# Pantry CLI configuration
# data_file may be overridden by --data-file or PANTRY_DATA_FILE.
`

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyFormat, types.FormatPairs)
	v.SetDefault(cfgKeyCompact, false)
	v.SetDefault(cfgKeySyncStrategy, types.SyncOnClose)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// storeConfig assembles the session configuration from flags and config.yaml.
func (a *app) storeConfig() (types.Config, error) {
	dataFile, err := paths.ResolveDataFile(a.flags.dataFile, a.v.GetString(cfgKeyDataFile))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data file: %w", err)
	}
	cfg := types.Config{
		DataFile:     dataFile,
		Format:       a.v.GetString(cfgKeyFormat),
		Compact:      a.v.GetBool(cfgKeyCompact),
		SyncStrategy: a.v.GetString(cfgKeySyncStrategy),
		BatchSize:    a.v.GetInt(cfgKeyBatchSize),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(configDir string, cfg types.Config) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	cfg.Mode = ""
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
