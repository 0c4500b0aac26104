// Package config provides configuration management for the lumi CLI.
package config

// Default configuration values for lumi.
const (
	// DefaultCatalogPath is the run catalog used when none is specified.
	DefaultCatalogPath = "data/sheet.csv"

	// DefaultPath is the search path used when none is specified.
	DefaultPath = "."

	// DefaultOutput is the default output format.
	DefaultOutput = "pretty"

	// DefaultWorkers is the default folder counting concurrency.
	DefaultWorkers = 4

	// DefaultRetentionDays is how long compute reports are retained.
	DefaultRetentionDays = 30
)
