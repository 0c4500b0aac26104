package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &TSVFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "RUN\tFOUND\tEXPECTED\tFRACTION\tLUMINOSITY", lines[0])
	assert.Equal(t, "10031\t5\t10\t50.00%\t50.000000", lines[1])
	assert.Equal(t, "10032\t12\t10\t120.00%\t12.000000", lines[2])
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &CSVFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, runColumns, records[0])
	assert.Equal(t, []string{"10031", "5", "10", "50.00%", "50.000000"}, records[1])
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &MarkdownFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "| RUN | FOUND | EXPECTED | FRACTION | LUMINOSITY |")
	assert.Contains(t, out, "| 10031 | 5 | 10 | 50.00% | 50.000000 |")
	assert.Contains(t, out, "**Total luminosity:** 62.000000")
}

func TestPlainFormatter(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	f := &PlainFormatter{}
	require.NoError(t, f.Format(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "10031")
	assert.Contains(t, out, "Total luminosity: 62.000000")
	assert.Contains(t, out, "Runs found: 2")
}

func TestPlainFormatter_NonVerboseOmitsTable(t *testing.T) {
	res := sampleResult()
	res.Verbose = false

	var buf bytes.Buffer
	f := &PlainFormatter{}
	require.NoError(t, f.Format(&buf, res))

	out := buf.String()
	assert.NotContains(t, out, "EXPECTED")
	assert.Contains(t, out, "Total luminosity: 62.000000")
}

func TestPrettyFormatter(t *testing.T) {
	res := sampleResult()
	res.Warnings = []string{"1 run folders have no catalog entry"}

	var buf bytes.Buffer
	f := &PrettyFormatter{}
	require.NoError(t, f.Format(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "/cache/hps")
	assert.Contains(t, out, "10031")
	assert.Contains(t, out, "62.000000")
	assert.Contains(t, out, "Warnings:")
}

func TestPrettyFormatter_FractionColumnPadded(t *testing.T) {
	var buf bytes.Buffer
	f := &PrettyFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	// Padding is applied to the raw text, so it survives styling intact.
	out := buf.String()
	assert.Contains(t, out, "  50.00%")
	assert.Contains(t, out, " 120.00%")
}

func TestEscapeMarkdownPipe(t *testing.T) {
	assert.Equal(t, `a\|b`, escapeMarkdownPipe("a|b"))
	assert.Equal(t, "plain", escapeMarkdownPipe("plain"))
}
