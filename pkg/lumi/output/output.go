// Package output provides formatters for displaying luminosity results
// in various output formats (pretty, plain, csv, json, yaml, etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// RunRow is one run's computed luminosity for output formatting.
type RunRow struct {
	// RunNumber identifies the run.
	RunNumber int `json:"run_number" yaml:"run_number"`

	// Folder is the discovered run folder path.
	Folder string `json:"folder" yaml:"folder"`

	// FoundFiles is the number of data files found on disk.
	FoundFiles int `json:"found_files" yaml:"found_files"`

	// ExpectedFiles is the catalog's expected file count.
	ExpectedFiles int `json:"expected_files" yaml:"expected_files"`

	// Fraction is FoundFiles / ExpectedFiles, unclamped.
	Fraction float64 `json:"fraction" yaml:"fraction"`

	// FullLuminosity is the reference luminosity for a complete run.
	FullLuminosity float64 `json:"full_luminosity" yaml:"full_luminosity"`

	// Luminosity is the computed (scaled) luminosity.
	Luminosity float64 `json:"luminosity" yaml:"luminosity"`
}

// ComputeStats contains statistics about a computation.
type ComputeStats struct {
	// CatalogRuns is the number of valid catalog rows loaded.
	CatalogRuns int `json:"catalog_runs" yaml:"catalog_runs"`

	// SkippedRows is the number of malformed catalog rows dropped.
	SkippedRows int `json:"skipped_rows" yaml:"skipped_rows"`

	// FoldersFound is the number of run folders discovered.
	FoldersFound int `json:"folders_found" yaml:"folders_found"`

	// RunsMatched is the number of folders with a catalog entry.
	RunsMatched int `json:"runs_matched" yaml:"runs_matched"`

	// Duration is the total time taken by the computation.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Runs contains one row per matched run, sorted by run number.
	Runs []RunRow `json:"runs" yaml:"runs"`

	// Stats contains computation statistics.
	Stats ComputeStats `json:"stats" yaml:"stats"`

	// Source is the search path that was scanned.
	Source string `json:"source" yaml:"source"`

	// Catalog is the catalog file the runs were joined against.
	Catalog string `json:"catalog" yaml:"catalog"`

	// Verbose requests per-run detail in human-readable formats.
	// Machine formats always emit the full document.
	Verbose bool `json:"-" yaml:"-"`

	// Warnings contains any warning messages generated during compute.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalLuminosity returns the sum of computed luminosity over all runs.
func (r *Result) TotalLuminosity() float64 {
	var total float64
	for _, run := range r.Runs {
		total += run.Luminosity
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// formatFraction renders a file fraction as a percentage.
func formatFraction(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// formatLuminosity renders a luminosity value with fixed precision.
func formatLuminosity(l float64) string {
	return fmt.Sprintf("%.6f", l)
}
