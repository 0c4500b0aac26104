package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCatalog writes a catalog CSV into a temp dir and returns its path.
func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, "x,evio_files_count,luminosity\n"+
		"10031,120,1.25\n"+
		"10032,80,0.5\n")

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, 0, cat.SkippedRows)

	rec, ok := cat.Get(10031)
	require.True(t, ok)
	assert.Equal(t, 10031, rec.RunNumber)
	assert.Equal(t, 120, rec.ExpectedFiles)
	assert.InDelta(t, 1.25, rec.FullLuminosity, 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogLoad)
}

func TestLoad_MissingColumn(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no run column", "run,evio_files_count,luminosity"},
		{"no count column", "x,files,luminosity"},
		{"no luminosity column", "x,evio_files_count,lumi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalog(t, tt.header+"\n1,2,3\n")

			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestLoad_ColumnOrderIrrelevant(t *testing.T) {
	path := writeCatalog(t, "luminosity,comment,x,evio_files_count\n"+
		"2.5,ignored,42,10\n")

	cat, err := Load(path)
	require.NoError(t, err)

	rec, ok := cat.Get(42)
	require.True(t, ok)
	assert.Equal(t, 10, rec.ExpectedFiles)
	assert.InDelta(t, 2.5, rec.FullLuminosity, 1e-9)
}

func TestLoad_MalformedRowsSkipped(t *testing.T) {
	path := writeCatalog(t, "x,evio_files_count,luminosity\n"+
		"10031,N/A,1.25\n"+ // non-numeric count
		",120,1.25\n"+ // missing run number
		"10032,120,not-a-float\n"+ // non-numeric luminosity
		"10033,0,1.0\n"+ // zero expected count is malformed
		"-5,120,1.0\n"+ // non-positive run number
		"10034,60,0.75\n") // valid

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cat.Len())
	assert.Equal(t, 5, cat.SkippedRows)

	_, ok := cat.Get(10034)
	assert.True(t, ok)
}

func TestLoad_DuplicateRunLastWins(t *testing.T) {
	path := writeCatalog(t, "x,evio_files_count,luminosity\n"+
		"42,10,100.0\n"+
		"42,20,200.0\n")

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cat.Len())
	rec, ok := cat.Get(42)
	require.True(t, ok)
	assert.Equal(t, 20, rec.ExpectedFiles)
	assert.InDelta(t, 200.0, rec.FullLuminosity, 1e-9)
}

func TestParse_RaggedRowsTolerated(t *testing.T) {
	// Spreadsheet exports often leave trailing junk on some rows.
	content := "x,evio_files_count,luminosity\n" +
		"42,10,100.0,extra,columns\n" +
		"43,5\n" // too short to hold luminosity: skipped

	cat, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, 1, cat.Len())
	assert.Equal(t, 1, cat.SkippedRows)
}

func TestParse_EmptyBody(t *testing.T) {
	cat, err := Parse(strings.NewReader("x,evio_files_count,luminosity\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestParse_NoHeader(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogLoad)
}
