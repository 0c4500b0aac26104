package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hps-dq/lumi/pkg/lumi/config"
	"github.com/hps-dq/lumi/pkg/lumi/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "lumi [path]",
		Short: "Estimate luminosity from the data files present on disk",
		Long: `Lumi estimates delivered luminosity for HPS data-taking runs.

It scans a directory for hps_XXXXX run folders, counts the data files in
each, and scales every run's full luminosity from the run catalog by the
fraction of expected files found. The output is the per-run estimate and
the aggregate total.

Examples:
  lumi /cache/hps                    # Total luminosity for runs under /cache/hps
  lumi -v /cache/hps                 # Per-run detail
  lumi -c runs.csv /cache/hps        # Use a specific run catalog
  lumi -r 10031 /cache/hps           # Only run 10031
  lumi -o json /cache/hps            # Machine-readable output
  lumi watch /cache/hps              # Recompute as files land
  lumi history                       # Past compute reports`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initLogging,
		RunE:              runCompute,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands, watch included)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/lumi/config.yaml)")
	rootCmd.PersistentFlags().StringP("catalog", "c", "", "run catalog CSV file")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().IntP("run", "r", 0, "only process this run number")
	rootCmd.PersistentFlags().StringP("pattern", "p", "", "only count files whose name contains this string")
	rootCmd.PersistentFlags().Bool("recursive", false, "count files in nested subdirectories too")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "folder counting concurrency (0=default)")

	// Compute flags
	rootCmd.Flags().StringP("output", "o", "", "output format (pretty, plain, tsv, csv, markdown, json, jsonl, yaml)")
	rootCmd.Flags().BoolP("verbose", "v", false, "show per-run detail")
	rootCmd.Flags().Bool("no-report", false, "don't record this compute in the report trail")

	// Bind flags to viper
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("run", rootCmd.PersistentFlags().Lookup("run"))
	_ = viper.BindPFlag("file_pattern", rootCmd.PersistentFlags().Lookup("pattern"))
	_ = viper.BindPFlag("recursive", rootCmd.PersistentFlags().Lookup("recursive"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("no_report", rootCmd.Flags().Lookup("no-report"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "lumi"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "lumi"))
		}
	}

	viper.SetEnvPrefix("LUMI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging initializes the logging system from the configuration.
func initLogging(_ *cobra.Command, _ []string) error {
	return logging.Init(logging.Config{
		Level:      viper.GetString("logging.level"),
		Path:       viper.GetString("logging.path"),
		Components: viper.GetStringMapString("logging.components"),
	})
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
