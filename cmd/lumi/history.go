package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hps-dq/lumi/pkg/lumi/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View compute history",
	Long: `View the history of compute operations.

Each compute records the per-run results and the total luminosity so
estimates can be compared across time as data lands on the filesystem.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific compute",
	Long:  `Display detailed information about a specific compute by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// runHistory lists recent compute reports.
func runHistory(_ *cobra.Command, _ []string) error {
	store, err := getReportStore()
	if err != nil {
		return err
	}

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No compute history")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %s  runs=%d  total=%.6f\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Summary.RunsMatched,
			e.Summary.TotalLuminosity)
	}

	return nil
}

// runHistoryShow prints one compute report in detail.
func runHistoryShow(_ *cobra.Command, args []string) error {
	store, err := getReportStore()
	if err != nil {
		return err
	}

	entry, err := store.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", entry.ID)
	fmt.Printf("Timestamp: %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Source:    %s\n", entry.Source)
	fmt.Printf("Catalog:   %s\n", entry.Catalog)
	fmt.Printf("Runs:      %d\n", entry.Summary.RunsMatched)
	fmt.Printf("Total:     %.6f\n\n", entry.Summary.TotalLuminosity)

	for _, r := range entry.Runs {
		fmt.Printf("  run %-8d %5d/%-5d files  %8.2f%%  %14.6f\n",
			r.RunNumber, r.FoundFiles, r.ExpectedFiles, r.Fraction*100, r.Luminosity)
	}

	return nil
}

// runHistoryClean removes history entries older than the retention period.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	store, err := getReportStore()
	if err != nil {
		return err
	}

	retention := config.DefaultRetentionDays
	if cfg, err := config.Load(); err == nil && cfg.Report.RetentionDays > 0 {
		retention = cfg.Report.RetentionDays
	}

	if err := store.Cleanup(retention); err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed entries older than %d days", retention)
	return nil
}
