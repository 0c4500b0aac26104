// Package calc computes estimated luminosity for HPS runs by joining
// discovered run folders against the run catalog and scaling each run's
// full luminosity by the fraction of expected files found on disk.
package calc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hps-dq/lumi/pkg/lumi/catalog"
	"github.com/hps-dq/lumi/pkg/lumi/discover"
	"github.com/hps-dq/lumi/pkg/lumi/logging"
)

// logger is the package-level logger for calculator operations.
var logger = logging.Get("calc")

// RunResult is the computed outcome for one run. A result exists only for
// run numbers present in both the catalog and the scanned folder set.
type RunResult struct {
	// RunNumber identifies the run.
	RunNumber int `json:"run_number"`

	// Folder is the path of the discovered run folder.
	Folder string `json:"folder"`

	// FoundFiles is the number of data files found in the folder.
	FoundFiles int `json:"found_files"`

	// ExpectedFiles is the catalog's expected file count for the run.
	ExpectedFiles int `json:"expected_files"`

	// Fraction is FoundFiles / ExpectedFiles. It is not clamped: an
	// over-complete run (duplicate or reprocessed files) yields a
	// fraction above 1.0.
	Fraction float64 `json:"fraction"`

	// FullLuminosity is the catalog's luminosity for a complete run.
	FullLuminosity float64 `json:"full_luminosity"`

	// Luminosity is Fraction * FullLuminosity.
	Luminosity float64 `json:"luminosity"`
}

// Stats describes the most recent computation.
type Stats struct {
	// CatalogRuns is the number of valid rows loaded from the catalog.
	CatalogRuns int `json:"catalog_runs"`

	// SkippedRows is the number of malformed catalog rows dropped.
	SkippedRows int `json:"skipped_rows"`

	// FoldersFound is the number of run folders discovered on disk.
	FoldersFound int `json:"folders_found"`

	// RunsMatched is the number of folders with a catalog entry.
	RunsMatched int `json:"runs_matched"`

	// Elapsed is the wall time of the computation.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures a Calculator.
type Options struct {
	// CatalogPath is the run catalog CSV file.
	CatalogPath string

	// SearchPath is the directory searched for run folders.
	SearchPath string

	// Discover configures folder discovery and file counting.
	Discover discover.Options
}

// Calculator joins the run catalog against the filesystem and computes
// per-run and total luminosity. Construction performs no I/O: the catalog
// is loaded on first use and cached for the calculator's lifetime, while
// the filesystem is re-scanned on every ComputeAll call so results always
// reflect current on-disk state.
type Calculator struct {
	opts Options

	catOnce sync.Once
	cat     *catalog.Catalog
	catErr  error

	statsMu sync.Mutex
	stats   Stats
}

// New creates a Calculator. No file is touched until ComputeAll or
// TotalLuminosity is called.
func New(opts Options) *Calculator {
	_ = opts.Discover.Validate()
	return &Calculator{opts: opts}
}

// Catalog returns the loaded catalog, loading it on first call.
func (c *Calculator) Catalog() (*catalog.Catalog, error) {
	c.catOnce.Do(func() {
		c.cat, c.catErr = catalog.Load(c.opts.CatalogPath)
	})
	return c.cat, c.catErr
}

// ComputeAll discovers run folders under the search path, joins them
// against the catalog by run number, and returns one RunResult per
// matched run, sorted ascending by run number.
//
// Folders without a catalog entry and catalog runs without a folder are
// both silently excluded: partial datasets are the expected steady state,
// not an error.
func (c *Calculator) ComputeAll(ctx context.Context) ([]RunResult, error) {
	start := time.Now()

	cat, err := c.Catalog()
	if err != nil {
		return nil, err
	}

	folders, err := discover.Scan(ctx, c.opts.SearchPath, c.opts.Discover)
	if err != nil {
		return nil, err
	}

	results := make([]RunResult, 0, len(folders))
	for _, folder := range folders {
		rec, ok := cat.Get(folder.RunNumber)
		if !ok {
			logger.Debug("folder has no catalog entry", "run", folder.RunNumber)
			continue
		}
		results = append(results, computeRun(folder, rec))
	}

	// Scan already sorts by run number; keep the guarantee even if the
	// discovery order ever changes.
	sort.Slice(results, func(i, j int) bool {
		return results[i].RunNumber < results[j].RunNumber
	})

	c.statsMu.Lock()
	c.stats = Stats{
		CatalogRuns:  cat.Len(),
		SkippedRows:  cat.SkippedRows,
		FoldersFound: len(folders),
		RunsMatched:  len(results),
		Elapsed:      time.Since(start),
	}
	c.statsMu.Unlock()

	logger.Debug("computation finished",
		"folders", len(folders), "matched", len(results), "elapsed", time.Since(start))

	return results, nil
}

// TotalLuminosity sums the computed luminosity over all matched runs.
// It returns 0.0 when nothing matches.
func (c *Calculator) TotalLuminosity(ctx context.Context) (float64, error) {
	results, err := c.ComputeAll(ctx)
	if err != nil {
		return 0, err
	}
	return Total(results), nil
}

// Stats returns statistics from the most recent ComputeAll call.
func (c *Calculator) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Total sums the computed luminosity of a result set.
func Total(results []RunResult) float64 {
	var total float64
	for _, r := range results {
		total += r.Luminosity
	}
	return total
}

// computeRun applies the luminosity formula to one matched run.
// Catalog records always have a positive expected file count.
func computeRun(folder discover.RunFolder, rec catalog.RunRecord) RunResult {
	fraction := float64(folder.FoundFiles) / float64(rec.ExpectedFiles)
	return RunResult{
		RunNumber:      folder.RunNumber,
		Folder:         folder.Path,
		FoundFiles:     folder.FoundFiles,
		ExpectedFiles:  rec.ExpectedFiles,
		Fraction:       fraction,
		FullLuminosity: rec.FullLuminosity,
		Luminosity:     fraction * rec.FullLuminosity,
	}
}
