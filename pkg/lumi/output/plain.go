package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if r.Verbose {
		if _, err := tw.Write([]byte("RUN\tFOUND\tEXPECTED\tFRACTION\tLUMINOSITY\n")); err != nil {
			return err
		}
		for _, run := range r.Runs {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n",
				run.RunNumber, run.FoundFiles, run.ExpectedFiles,
				formatFraction(run.Fraction), formatLuminosity(run.Luminosity))
		}
	}

	fmt.Fprintf(tw, "Total luminosity: %s\n", formatLuminosity(r.TotalLuminosity()))
	fmt.Fprintf(tw, "Runs found: %d\n", r.Stats.RunsMatched)

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
