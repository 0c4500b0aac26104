package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	var doc struct {
		Runs []RunRow `json:"runs"`
		Meta struct {
			Source          string  `json:"source"`
			Catalog         string  `json:"catalog"`
			TotalLuminosity float64 `json:"total_luminosity"`
		} `json:"meta"`
		Stats struct {
			RunsMatched int `json:"runs_matched"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Runs, 2)
	assert.Equal(t, 10031, doc.Runs[0].RunNumber)
	assert.InDelta(t, 50.0, doc.Runs[0].Luminosity, 1e-9)
	assert.Equal(t, "/cache/hps", doc.Meta.Source)
	assert.Equal(t, "/data/sheet.csv", doc.Meta.Catalog)
	assert.InDelta(t, 62.0, doc.Meta.TotalLuminosity, 1e-9)
	assert.Equal(t, 2, doc.Stats.RunsMatched)
}

func TestJSONFormatter_EmptyRunsIsArray(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Format(&buf, &Result{}))

	assert.Contains(t, buf.String(), `"runs": []`)
}

func TestJSONLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONLFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var run RunRow
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &run))
	assert.Equal(t, 10032, run.RunNumber)
	assert.InDelta(t, 1.2, run.Fraction, 1e-9)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &YAMLFormatter{}
	require.NoError(t, f.Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "run_number: 10031")
	assert.Contains(t, out, "total_luminosity: 62")
	assert.Contains(t, out, "source: /cache/hps")
}
