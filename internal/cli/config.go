package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDriver         = "driver"
	cfgKeyDataSource     = "data_source"
	cfgKeyDataDir        = "data_dir"
	cfgKeyTablePrefix    = "table_prefix"
	cfgKeyCommandTimeout = "command_timeout"
	cfgKeyCollection     = "collection"
)

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDriver, types.DriverSQLite)
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

// loadStoreConfig resolves directories and builds the store Config from
// config.yaml and the global flags.
func (a *app) loadStoreConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, sysError("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, userError("%w", err)
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Driver:         v.GetString(cfgKeyDriver),
		DataSource:     v.GetString(cfgKeyDataSource),
		DataDir:        dataDir,
		TablePrefix:    v.GetString(cfgKeyTablePrefix),
		CommandTimeout: v.GetDuration(cfgKeyCommandTimeout),
		Collection:     v.GetString(cfgKeyCollection),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError("invalid config %s: %w", filepath.Join(configDir, configFileExt), err)
	}
	return cfg, nil
}

// configExists reports whether config.yaml is present in configDir.
func configExists(configDir string) (bool, error) {
	_, err := os.Stat(filepath.Join(configDir, configFileExt))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat config file: %w", err)
}
