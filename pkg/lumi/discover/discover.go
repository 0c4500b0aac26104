// Package discover finds HPS run folders under a search root and counts
// the data files inside each one. Discovery is a read-only filesystem
// inspection: nothing is created, modified, or cached between scans.
package discover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hps-dq/lumi/pkg/lumi/logging"
)

// logger is the package-level logger for discovery operations.
var logger = logging.Get("discover")

// folderPattern matches run folder names such as "hps_12345".
// The digit suffix is the run number.
var folderPattern = regexp.MustCompile(`^hps_(\d+)$`)

// ErrScanRoot indicates the search root is missing or not a directory.
var ErrScanRoot = errors.New("scan root is not a directory")

// RunFolder is a discovered run directory. Folders are produced fresh on
// every scan and never persisted.
type RunFolder struct {
	// RunNumber is parsed from the directory name suffix.
	RunNumber int `json:"run_number"`

	// Path is the absolute path of the folder.
	Path string `json:"path"`

	// FoundFiles is the number of data files counted in the folder.
	FoundFiles int `json:"found_files"`
}

// Options configures a scan.
type Options struct {
	// RunFilter restricts discovery to a single run number when positive.
	RunFilter int

	// FilePattern, when non-empty, only counts files whose name contains
	// this substring.
	FilePattern string

	// Recursive counts files in nested subdirectories too. The default
	// counts only immediate regular-file entries.
	Recursive bool

	// Workers is the number of concurrent folder counters.
	Workers int
}

// DefaultWorkers is the folder counting concurrency used when Options
// leaves Workers unset.
const DefaultWorkers = 4

// Validate applies defaults for unset or invalid values.
func (o *Options) Validate() error {
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.RunFilter < 0 {
		o.RunFilter = 0
	}
	return nil
}

// Scan lists the immediate subdirectories of root, keeps those matching
// the run folder pattern, and counts the files inside each. Results are
// sorted ascending by run number so directory listing order never leaks
// into the output. Non-matching names are ignored.
func Scan(ctx context.Context, root string, opts Options) ([]RunFolder, error) {
	_ = opts.Validate()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanRoot, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrScanRoot, absRoot)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanRoot, err)
	}

	var folders []RunFolder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, ok := parseRunNumber(entry.Name())
		if !ok {
			continue
		}
		if opts.RunFilter > 0 && run != opts.RunFilter {
			continue
		}
		folders = append(folders, RunFolder{
			RunNumber: run,
			Path:      filepath.Join(absRoot, entry.Name()),
		})
	}

	logger.Debug("run folders discovered", "root", absRoot, "folders", len(folders))

	if err := countAll(ctx, folders, opts); err != nil {
		return nil, err
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].RunNumber < folders[j].RunNumber
	})

	return folders, nil
}

// parseRunNumber extracts the run number from a folder name.
func parseRunNumber(name string) (int, bool) {
	m := folderPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	run, err := strconv.Atoi(m[1])
	if err != nil || run <= 0 {
		return 0, false
	}
	return run, true
}

// countAll fills in FoundFiles for every folder using a bounded worker
// pool. Counting is independent per folder, so ordering is restored by
// the caller's sort rather than preserved here.
func countAll(ctx context.Context, folders []RunFolder, opts Options) error {
	if len(folders) == 0 {
		return nil
	}

	workers := opts.Workers
	if workers > len(folders) {
		workers = len(folders)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				n, err := CountFiles(ctx, folders[i].Path, opts)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}
				folders[i].FoundFiles = n
			}
		}()
	}

	for i := range folders {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return err
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return firstErr
}

// CountFiles counts the data files in one run folder, honoring the
// FilePattern and Recursive options.
func CountFiles(ctx context.Context, dir string, opts Options) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if opts.Recursive {
		return countRecursive(dir, opts.FilePattern)
	}
	return countImmediate(dir, opts.FilePattern)
}

// countImmediate counts regular files directly inside dir. Subdirectories
// are neither counted nor recursed into.
func countImmediate(dir, pattern string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("counting files in %s: %w", dir, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if pattern != "" && !strings.Contains(entry.Name(), pattern) {
			continue
		}
		count++
	}
	return count, nil
}
