package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/docshelf/internal/paths"
	"github.com/mesh-intelligence/docshelf/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend       string `yaml:"backend"`
	DataDir       string `yaml:"data_dir,omitempty"`
	Quota         string `yaml:"quota"`
	MaxUploadSize string `yaml:"max_upload_size"`
	FolderDelete  string `yaml:"folder_delete"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file and initialize the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		if err := ensureConfigDir(configDir); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := writeConfigIfMissing(configPath(configDir), flagDataDir); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		lib, err := attachLibrary()
		if err != nil {
			return err
		}
		if err := lib.Detach(); err != nil {
			return fmt.Errorf("finalize storage: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "docshelf initialized in", configDir)
		return nil
	},
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	c := configFile{
		Backend:       types.BackendSQLite,
		DataDir:       dataDir,
		Quota:         types.DefaultQuota,
		MaxUploadSize: types.Config{}.Normalize().MaxUploadSize,
		FolderDelete:  types.FolderDeleteShallow,
	}
	data, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
