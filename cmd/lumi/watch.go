package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hps-dq/lumi/pkg/lumi/calc"
	"github.com/hps-dq/lumi/pkg/lumi/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Recompute luminosity as files land",
	Long: `Watch the search path and recompute the total luminosity whenever
data files appear or disappear. Useful while a transfer from the tape
library is in flight. Press Ctrl-C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch recomputes and prints the total on every filesystem change.
func runWatch(_ *cobra.Command, args []string) error {
	opts, err := buildCalcOptions(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calculator := calc.New(opts)

	recompute := func() {
		total, err := calculator.TotalLuminosity(ctx)
		if err != nil {
			printError("recompute failed: %v", err)
			return
		}
		stats := calculator.Stats()
		printInfo("Total luminosity: %.6f (%d runs)", total, stats.RunsMatched)
	}

	// Print a baseline before waiting for events.
	recompute()

	w, err := watcher.New(opts.SearchPath, watcher.DefaultDebounce, recompute)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Start(); err != nil {
		return err
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printInfo("Watch stopped")
	return nil
}
