package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/docshelf/internal/logging"
	"github.com/mesh-intelligence/docshelf/internal/paths"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagLogLevel  string
)

// Set by PersistentPreRunE for all subcommands.
var (
	cfg    *viper.Viper
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docshelf",
	Short: "docshelf keeps document metadata, folders and access grants in a local store",
	Long: `docshelf manages document metadata, tags, folders and per-user access
entries. Everything is kept in a local store under the data directory; no
file content is ever stored.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file in the working directory may set DOCSHELF_* variables.
		_ = godotenv.Load()

		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		cfg = v

		logCfg := logging.Config{
			Level:  logging.Level(v.GetString(cfgKeyLogLevel)),
			Format: logging.Format(v.GetString(cfgKeyLogFormat)),
		}
		if flagLogLevel != "" {
			logCfg.Level = logging.Level(flagLogLevel)
		}
		if err := logCfg.Finalize(); err != nil {
			return usagef("%v", err)
		}
		logger = logging.New(&logCfg, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usagef("%v", err)
	})

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(aclCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}
