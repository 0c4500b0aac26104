package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	header := f.formatHeader(r)
	w.WriteString(header)
	w.WriteString("\n")

	if r.Verbose {
		table := f.formatTable(r)
		w.WriteString(table)
	}

	footer := f.formatFooter(r)
	w.WriteString(footer)

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with compute metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	catalogLabel := LabelStyle.Render("Catalog:")
	catalogValue := ValueStyle.Render(fmt.Sprintf("%s (%s runs)",
		r.Catalog, humanize.Comma(int64(r.Stats.CatalogRuns))))
	lines = append(lines, fmt.Sprintf("%s %s", catalogLabel, catalogValue))

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%d folders, %d matched in %s",
		r.Stats.FoldersFound, r.Stats.RunsMatched, formatDuration(r.Stats.Duration)))
	lines = append(lines, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatTable builds the per-run table.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Runs) == 0 {
		return MutedStyle.Render("  No run folders matched the catalog\n")
	}

	var sb strings.Builder

	headers := []string{"RUN", "FOUND", "EXPECTED", "FRACTION", "LUMINOSITY"}
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(TableHeaderStyle.Render(h))
	}
	sb.WriteString("\n")

	for _, run := range r.Runs {
		// Pad before styling: escape codes must not count toward width.
		fractionStr := padLeft(formatFraction(run.Fraction), 8)
		fractionStyled := WarningStyle.Render(fractionStr)
		if run.Fraction >= 1.0 {
			fractionStyled = SuccessStyle.Render(fractionStr)
		}

		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s  %s\n",
			ValueStyle.Render(padLeft(fmt.Sprintf("%d", run.RunNumber), 8)),
			ValueStyle.Render(padLeft(fmt.Sprintf("%d", run.FoundFiles), 8)),
			ValueStyle.Render(padLeft(fmt.Sprintf("%d", run.ExpectedFiles), 8)),
			fractionStyled,
			LumiStyle.Render(padLeft(formatLuminosity(run.Luminosity), 14)),
		))
	}

	return sb.String()
}

// formatFooter builds the footer box with the total luminosity.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	runsLabel := LabelStyle.Render("Runs:")
	runsValue := ValueStyle.Render(fmt.Sprintf("%d", r.Stats.RunsMatched))
	parts = append(parts, fmt.Sprintf("%s %s", runsLabel, runsValue))

	totalLabel := LabelStyle.Render("Total luminosity:")
	totalValue := LumiStyle.Render(formatLuminosity(r.TotalLuminosity()))
	parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

	if !r.Verbose {
		hint := MutedStyle.Render("Use -v for per-run detail")
		parts = append(parts, hint)
	}

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
