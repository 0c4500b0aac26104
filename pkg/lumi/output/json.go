package output

import (
	"bytes"
	"encoding/json"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Runs  []RunRow  `json:"runs"`
	Stats jsonStats `json:"stats"`
	Meta  jsonMeta  `json:"meta"`
}

// jsonStats represents compute statistics in JSON output.
type jsonStats struct {
	CatalogRuns  int    `json:"catalog_runs"`
	SkippedRows  int    `json:"skipped_rows"`
	FoldersFound int    `json:"folders_found"`
	RunsMatched  int    `json:"runs_matched"`
	Duration     string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Source          string   `json:"source"`
	Catalog         string   `json:"catalog"`
	TotalLuminosity float64  `json:"total_luminosity"`
	Warnings        []string `json:"warnings,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with runs, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSONOutput(r))
}

// buildJSONOutput converts Result to the JSON output structure.
func buildJSONOutput(r *Result) jsonOutput {
	runs := r.Runs
	if runs == nil {
		runs = []RunRow{}
	}

	return jsonOutput{
		Runs: runs,
		Stats: jsonStats{
			CatalogRuns:  r.Stats.CatalogRuns,
			SkippedRows:  r.Stats.SkippedRows,
			FoldersFound: r.Stats.FoldersFound,
			RunsMatched:  r.Stats.RunsMatched,
			Duration:     r.Stats.Duration.String(),
		},
		Meta: jsonMeta{
			Source:          r.Source,
			Catalog:         r.Catalog,
			TotalLuminosity: r.TotalLuminosity(),
			Warnings:        r.Warnings,
		},
	}
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one run per line).
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, run := range r.Runs {
		data, err := json.Marshal(run)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
