package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"go.uber.org/zap"

	"github.com/xxxsen/fuzzyac/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "fuzzyac",
	Short:         "Multi-keyword exact and fuzzy text scanner",
	Long:          "Scan documents, DNS queries or HTTP requests for dictionary keywords within a bounded Levenshtein distance.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to yaml configuration file")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(distanceCmd)
}

// loadConfig reads the configuration and initialises the global logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("init config failed, err:%w", err)
	}
	logkit := logger.Init(cfg.Log.File, cfg.Log.Level, int(cfg.Log.FileCount),
		int(cfg.Log.FileSize), int(cfg.Log.KeepDays), cfg.Log.Console)
	return cfg, logkit, nil
}
