package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// runColumns is the column order shared by the tabular formatters.
var runColumns = []string{"RUN", "FOUND", "EXPECTED", "FRACTION", "LUMINOSITY"}

// runFields renders one run as string cells in runColumns order.
func runFields(run RunRow) []string {
	return []string{
		strconv.Itoa(run.RunNumber),
		strconv.Itoa(run.FoundFiles),
		strconv.Itoa(run.ExpectedFiles),
		formatFraction(run.Fraction),
		formatLuminosity(run.Luminosity),
	}
}

// TSVFormatter formats output as tab-separated values.
// It produces a simple table with a header row followed by data rows.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(strings.Join(runColumns, "\t"))
	w.WriteByte('\n')

	for _, run := range r.Runs {
		w.WriteString(strings.Join(runFields(run), "\t"))
		w.WriteByte('\n')
	}

	return nil
}

func init() {
	Register("tsv", func() Formatter {
		return &TSVFormatter{}
	})
}

// Ensure TSVFormatter implements Formatter.
var _ Formatter = (*TSVFormatter)(nil)

// CSVFormatter formats output as comma-separated values with proper quoting.
// It uses encoding/csv for RFC 4180 compliant output.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(runColumns); err != nil {
		return err
	}

	for _, run := range r.Runs {
		if err := writer.Write(runFields(run)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
}

// Ensure CSVFormatter implements Formatter.
var _ Formatter = (*CSVFormatter)(nil)

// MarkdownFormatter formats output as a GitHub-flavored Markdown table.
// It produces a table with header, separator, and data rows using | delimiters.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	fmt.Fprintf(w, "| %s |\n", strings.Join(runColumns, " | "))

	seps := make([]string, len(runColumns))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))

	for _, run := range r.Runs {
		fields := runFields(run)
		for i, field := range fields {
			fields[i] = escapeMarkdownPipe(field)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(fields, " | "))
	}

	fmt.Fprintf(w, "\n**Total luminosity:** %s\n", formatLuminosity(r.TotalLuminosity()))

	return nil
}

// escapeMarkdownPipe escapes pipe characters in a string for Markdown tables.
func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("markdown", func() Formatter {
		return &MarkdownFormatter{}
	})
}

// Ensure MarkdownFormatter implements Formatter.
var _ Formatter = (*MarkdownFormatter)(nil)
