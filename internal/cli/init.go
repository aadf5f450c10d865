package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Driver      string `yaml:"driver"`
	DataSource  string `yaml:"data_source,omitempty"`
	DataDir     string `yaml:"data_dir,omitempty"`
	TablePrefix string `yaml:"table_prefix,omitempty"`
	Collection  string `yaml:"collection,omitempty"`
}

func newInitCmd(a *app) *cobra.Command {
	var tablePrefix string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pantry storage",
		Long: "Create the configuration directory and config.yaml, then attach the store\n" +
			"once so the document table exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, tablePrefix)
		},
	}
	cmd.Flags().StringVar(&tablePrefix, "table-prefix", "", "prefix written to config.yaml for every table name")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, tablePrefix string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	exists, err := configExists(configDir)
	if err != nil {
		return sysError("%w", err)
	}
	if !exists {
		cfg := configFile{Driver: types.DriverSQLite, DataDir: a.flags.dataDir, TablePrefix: tablePrefix}
		if err := writeConfig(filepath.Join(configDir, configFileExt), cfg); err != nil {
			return sysError("write config: %w", err)
		}
	}

	s, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	if err := s.Detach(); err != nil {
		return sysError("finalize storage: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Pantry initialized successfully")
	return nil
}

// writeConfig marshals cfg and replaces path atomically.
func writeConfig(path string, cfg configFile) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return atomic.WriteFile(path, strings.NewReader("# pantry configuration\n"+string(data)))
}
