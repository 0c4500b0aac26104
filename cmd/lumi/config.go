package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hps-dq/lumi/pkg/lumi/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage lumi configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/lumi/config.yaml (if set)
  2. ~/.config/lumi/config.yaml

Environment variables can override config file settings using the LUMI_ prefix:
  LUMI_CATALOG=/data/runs.csv
  LUMI_WORKERS=8
  LUMI_OUTPUT=json`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Printf("catalog:       %s\n", cfg.Catalog)
	fmt.Printf("default_path:  %s\n", cfg.DefaultPath)
	fmt.Printf("output:        %s\n", cfg.Output)
	fmt.Printf("file_pattern:  %q\n", cfg.FilePattern)
	fmt.Printf("recursive:     %t\n", cfg.Recursive)
	fmt.Printf("workers:       %d\n", cfg.Workers)
	fmt.Printf("report:\n")
	fmt.Printf("  enabled:        %t\n", cfg.Report.Enabled)
	fmt.Printf("  path:           %s\n", config.ReportDir(cfg))
	fmt.Printf("  retention_days: %d\n", cfg.Report.RetentionDays)
	fmt.Printf("logging:\n")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  path:  %s\n", cfg.Logging.Path)

	return nil
}

// runConfigInit creates a default configuration file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	printInfo("Configuration file: %s", filepath.Join(dir, "config.yaml"))
	return nil
}

// runConfigPath prints the configuration file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Println(filepath.Join(dir, "config.yaml"))
	return nil
}
