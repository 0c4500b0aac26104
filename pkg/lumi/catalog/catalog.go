package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hps-dq/lumi/pkg/lumi/logging"
)

// logger is the package-level logger for catalog operations.
var logger = logging.Get("catalog")

// Required catalog column names. Column order is irrelevant; the header
// row decides which column holds which field. Extra columns are ignored.
const (
	ColumnRun        = "x"
	ColumnFileCount  = "evio_files_count"
	ColumnLuminosity = "luminosity"
)

// ErrCatalogLoad indicates the catalog file is missing or unreadable.
var ErrCatalogLoad = errors.New("catalog cannot be read")

// ErrMissingColumn indicates a required column is absent from the header.
var ErrMissingColumn = errors.New("catalog missing required column")

// Load reads the run catalog from a CSV file at path.
//
// A structurally broken file (missing, unreadable, or lacking one of the
// required header columns) is fatal. Individual malformed rows are not:
// a row whose run number, file count, or luminosity is missing or
// non-numeric is skipped and counted in Catalog.SkippedRows. Rows with a
// non-positive run number or expected file count are treated the same way.
// When the same run number appears more than once, the last row wins.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a catalog from an open CSV stream. See Load for row policy.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Rows may carry trailing junk columns from spreadsheet exports.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCatalogLoad, err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Runs: make(map[int]RunRecord)}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading row: %v", ErrCatalogLoad, err)
		}

		rec, ok := parseRow(row, cols)
		if !ok {
			cat.SkippedRows++
			logger.Debug("skipping malformed catalog row", "line", line)
			continue
		}
		cat.Runs[rec.RunNumber] = rec
	}

	logger.Debug("catalog loaded", "runs", len(cat.Runs), "skipped", cat.SkippedRows)
	return cat, nil
}

// columns holds the resolved index of each required column.
type columns struct {
	run   int
	count int
	lumi  int
}

// resolveColumns maps required column names to their header positions.
func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	cols := columns{}
	lookups := []struct {
		name string
		dst  *int
	}{
		{ColumnRun, &cols.run},
		{ColumnFileCount, &cols.count},
		{ColumnLuminosity, &cols.lumi},
	}
	for _, l := range lookups {
		i, ok := index[l.name]
		if !ok {
			return columns{}, fmt.Errorf("%w: %q", ErrMissingColumn, l.name)
		}
		*l.dst = i
	}
	return cols, nil
}

// parseRow converts one CSV row into a RunRecord.
// It returns ok=false for any row that cannot yield a valid record.
func parseRow(row []string, cols columns) (RunRecord, bool) {
	run, ok := intField(row, cols.run)
	if !ok || run <= 0 {
		return RunRecord{}, false
	}

	count, ok := intField(row, cols.count)
	if !ok || count <= 0 {
		return RunRecord{}, false
	}

	lumi, ok := floatField(row, cols.lumi)
	if !ok || lumi < 0 {
		return RunRecord{}, false
	}

	return RunRecord{
		RunNumber:      run,
		ExpectedFiles:  count,
		FullLuminosity: lumi,
	}, true
}

// intField parses an integer cell, tolerating surrounding whitespace.
func intField(row []string, i int) (int, bool) {
	if i >= len(row) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(row[i]))
	if err != nil {
		return 0, false
	}
	return v, true
}

// floatField parses a float cell, tolerating surrounding whitespace.
func floatField(row []string, i int) (float64, bool) {
	if i >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
