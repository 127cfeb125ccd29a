package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/docshelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyQuota         = "quota"
	cfgKeyMaxUploadSize = "max_upload_size"
	cfgKeyFolderDelete  = "folder_delete"
	cfgKeyWatchInterval = "watch_interval"
	cfgKeyAllowedTypes  = "allowed_types"
	cfgKeyLogLevel      = "log.level"
	cfgKeyLogFormat     = "log.format"

	envPrefix = "DOCSHELF"
)

// loadConfig reads config.yaml from configDir using Viper. Environment
// variables prefixed DOCSHELF_ override file values (log.level becomes
// DOCSHELF_LOG_LEVEL). A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyQuota, types.DefaultQuota)
	v.SetDefault(cfgKeyFolderDelete, types.FolderDeleteShallow)
	v.SetDefault(cfgKeyWatchInterval, types.DefaultWatchInterval)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// libraryConfig turns the loaded settings into a types.Config with the
// data directory resolved.
func libraryConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       dataDir,
		Quota:         v.GetString(cfgKeyQuota),
		MaxUploadSize: v.GetString(cfgKeyMaxUploadSize),
		FolderDelete:  v.GetString(cfgKeyFolderDelete),
		WatchInterval: v.GetDuration(cfgKeyWatchInterval),
		AllowedTypes:  v.GetStringSlice(cfgKeyAllowedTypes),
	}
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// configPath returns the config.yaml location inside configDir.
func configPath(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}
