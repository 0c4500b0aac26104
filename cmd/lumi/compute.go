package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hps-dq/lumi/pkg/lumi/calc"
	"github.com/hps-dq/lumi/pkg/lumi/config"
	"github.com/hps-dq/lumi/pkg/lumi/discover"
	"github.com/hps-dq/lumi/pkg/lumi/output"
	"github.com/hps-dq/lumi/pkg/lumi/report"
)

// runCompute is the main compute command handler.
func runCompute(_ *cobra.Command, args []string) error {
	opts, err := buildCalcOptions(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calculator := calc.New(opts)
	results, err := calculator.ComputeAll(ctx)
	if err != nil {
		return err
	}

	res := buildOutputResult(calculator, results, opts)

	if err := renderResult(res); err != nil {
		return err
	}

	logReport(opts, results)
	return nil
}

// buildCalcOptions resolves the search path, catalog, and discovery
// options from arguments, flags, config file, and environment.
func buildCalcOptions(args []string) (calc.Options, error) {
	searchPath := viper.GetString("default_path")
	if len(args) > 0 {
		searchPath = args[0]
	}

	expanded, err := config.ExpandPath(searchPath)
	if err != nil {
		return calc.Options{}, fmt.Errorf("failed to expand path: %w", err)
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return calc.Options{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	catalogPath, err := config.ExpandPath(viper.GetString("catalog"))
	if err != nil {
		return calc.Options{}, fmt.Errorf("failed to expand catalog path: %w", err)
	}

	return calc.Options{
		CatalogPath: catalogPath,
		SearchPath:  absPath,
		Discover: discover.Options{
			RunFilter:   viper.GetInt("run"),
			FilePattern: viper.GetString("file_pattern"),
			Recursive:   viper.GetBool("recursive"),
			Workers:     viper.GetInt("workers"),
		},
	}, nil
}

// buildOutputResult shapes computed runs into the output document.
func buildOutputResult(calculator *calc.Calculator, results []calc.RunResult, opts calc.Options) *output.Result {
	stats := calculator.Stats()

	runs := make([]output.RunRow, len(results))
	for i, r := range results {
		runs[i] = output.RunRow{
			RunNumber:      r.RunNumber,
			Folder:         r.Folder,
			FoundFiles:     r.FoundFiles,
			ExpectedFiles:  r.ExpectedFiles,
			Fraction:       r.Fraction,
			FullLuminosity: r.FullLuminosity,
			Luminosity:     r.Luminosity,
		}
	}

	res := &output.Result{
		Runs:    runs,
		Source:  opts.SearchPath,
		Catalog: opts.CatalogPath,
		Verbose: viper.GetBool("verbose"),
		Stats: output.ComputeStats{
			CatalogRuns:  stats.CatalogRuns,
			SkippedRows:  stats.SkippedRows,
			FoldersFound: stats.FoldersFound,
			RunsMatched:  stats.RunsMatched,
			Duration:     stats.Elapsed,
		},
	}

	if stats.SkippedRows > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d malformed catalog rows were skipped", stats.SkippedRows))
	}
	if unmatched := stats.FoldersFound - stats.RunsMatched; unmatched > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%d run folders have no catalog entry", unmatched))
	}

	return res
}

// renderResult formats and prints the result document.
func renderResult(res *output.Result) error {
	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = config.DefaultOutput
	}

	formatter, err := output.Get(outFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v",
			outFormat, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	fmt.Print(buf.String())
	return nil
}

// logReport records the compute in the report trail, best effort.
// A failed report write never fails the compute itself.
func logReport(opts calc.Options, results []calc.RunResult) {
	if viper.GetBool("no_report") || !viper.GetBool("report.enabled") {
		return
	}

	store, err := getReportStore()
	if err != nil {
		printError("report trail unavailable: %v", err)
		return
	}
	if err := store.EnsureDir(); err != nil {
		printError("report trail unavailable: %v", err)
		return
	}
	if _, err := store.LogCompute(opts.SearchPath, opts.CatalogPath, results); err != nil {
		printError("failed to record compute report: %v", err)
	}
}

// getReportStore returns a report store at the configured directory.
func getReportStore() (*report.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return report.New(config.ReportDir(nil))
	}
	return report.New(config.ReportDir(cfg))
}
