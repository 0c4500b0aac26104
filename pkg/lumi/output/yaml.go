package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Runs  []RunRow  `yaml:"runs"`
	Stats yamlStats `yaml:"stats"`
	Meta  yamlMeta  `yaml:"meta"`
}

// yamlStats represents compute statistics in YAML output.
type yamlStats struct {
	CatalogRuns  int    `yaml:"catalog_runs"`
	SkippedRows  int    `yaml:"skipped_rows"`
	FoldersFound int    `yaml:"folders_found"`
	RunsMatched  int    `yaml:"runs_matched"`
	Duration     string `yaml:"duration"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Source          string   `yaml:"source"`
	Catalog         string   `yaml:"catalog"`
	TotalLuminosity float64  `yaml:"total_luminosity"`
	Warnings        []string `yaml:"warnings,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	runs := r.Runs
	if runs == nil {
		runs = []RunRow{}
	}

	out := yamlOutput{
		Runs: runs,
		Stats: yamlStats{
			CatalogRuns:  r.Stats.CatalogRuns,
			SkippedRows:  r.Stats.SkippedRows,
			FoldersFound: r.Stats.FoldersFound,
			RunsMatched:  r.Stats.RunsMatched,
			Duration:     r.Stats.Duration.String(),
		},
		Meta: yamlMeta{
			Source:          r.Source,
			Catalog:         r.Catalog,
			TotalLuminosity: r.TotalLuminosity(),
			Warnings:        r.Warnings,
		},
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
