package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// ReportConfig configures the compute report trail.
type ReportConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	Catalog     string        `mapstructure:"catalog"`
	DefaultPath string        `mapstructure:"default_path"`
	Output      string        `mapstructure:"output"`
	FilePattern string        `mapstructure:"file_pattern"`
	Recursive   bool          `mapstructure:"recursive"`
	Workers     int           `mapstructure:"workers"`
	Report      ReportConfig  `mapstructure:"report"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/lumi/config.yaml
//   - $HOME/.config/lumi/config.yaml
//
// Environment variables are prefixed with LUMI_ (e.g., LUMI_CATALOG).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "lumi"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "lumi"))

	v.SetEnvPrefix("LUMI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	v.SetDefault("report.path", defaultReportDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in paths if present.
	for _, p := range []*string{&cfg.Catalog, &cfg.DefaultPath, &cfg.Report.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// SetDefaults registers lumi's default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("catalog", DefaultCatalogPath)
	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("file_pattern", "")
	v.SetDefault("recursive", false)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("report.enabled", true)
	v.SetDefault("report.retention_days", DefaultRetentionDays)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.components", map[string]string{
		"catalog":  "info",
		"discover": "info",
		"calc":     "info",
		"watcher":  "warn",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "lumi"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "lumi"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// defaultReportDir returns the default directory for compute reports.
func defaultReportDir() string {
	return filepath.Join(xdg.DataHome, "lumi", "reports")
}

// ReportDir returns the configured report directory, falling back to the
// default when cfg is nil or the path is empty.
func ReportDir(cfg *Config) string {
	if cfg != nil && cfg.Report.Path != "" {
		return cfg.Report.Path
	}
	return defaultReportDir()
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Lumi Luminosity Calculator Configuration

# Run catalog CSV (columns: x, evio_files_count, luminosity)
catalog: %s

# Default path to search for hps_XXXXX run folders
default_path: %s

# Default output format: pretty, plain, tsv, csv, markdown, json, jsonl, yaml
output: %s

# Only count files whose name contains this substring (empty counts all)
file_pattern: ""

# Count files in nested subdirectories too
recursive: false

# Folder counting concurrency
workers: %d

# Compute report trail
report:
  enabled: true
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty logs to stderr)
  path: ""
  # Per-component log levels
  components:
    catalog: info
    discover: info
    calc: info
    watcher: warn
`, DefaultCatalogPath, DefaultPath, DefaultOutput, DefaultWorkers, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
