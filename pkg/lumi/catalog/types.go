// Package catalog loads the reference run catalog used to compute
// luminosity estimates. The catalog is a header-driven CSV file mapping
// run numbers to their expected EVIO file count and full luminosity.
package catalog

// RunRecord is one row of the run catalog.
// Records are created once at load time and never mutated.
type RunRecord struct {
	// RunNumber identifies the data-taking run. Always positive.
	RunNumber int `json:"run_number"`

	// ExpectedFiles is the number of EVIO files a complete run has.
	// Always positive; rows with a zero or negative count are rejected
	// as malformed at load time.
	ExpectedFiles int `json:"expected_files"`

	// FullLuminosity is the luminosity value for the run if 100% of the
	// expected files are present.
	FullLuminosity float64 `json:"full_luminosity"`
}

// Catalog is the in-memory run catalog keyed by run number.
type Catalog struct {
	// Runs maps run number to its record.
	Runs map[int]RunRecord

	// SkippedRows counts malformed rows dropped during load.
	SkippedRows int
}

// Get returns the record for a run number and whether it exists.
func (c *Catalog) Get(runNumber int) (RunRecord, bool) {
	rec, ok := c.Runs[runNumber]
	return rec, ok
}

// Len returns the number of runs in the catalog.
func (c *Catalog) Len() int {
	return len(c.Runs)
}
