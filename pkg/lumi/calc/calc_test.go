package calc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hps-dq/lumi/pkg/lumi/catalog"
	"github.com/hps-dq/lumi/pkg/lumi/discover"
)

// fixture builds a catalog file and a search root with run folders.
type fixture struct {
	catalogPath string
	searchPath  string
}

// newFixture writes a catalog CSV and creates run folders with the given
// number of files each.
func newFixture(t *testing.T, catalogCSV string, folders map[string]int) fixture {
	t.Helper()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "sheet.csv")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogCSV), 0o644))

	searchPath := filepath.Join(dir, "cache")
	require.NoError(t, os.MkdirAll(searchPath, 0o755))
	for name, files := range folders {
		folder := filepath.Join(searchPath, name)
		require.NoError(t, os.MkdirAll(folder, 0o755))
		for i := 0; i < files; i++ {
			path := filepath.Join(folder, "run.evio."+string(rune('a'+i)))
			require.NoError(t, os.WriteFile(path, []byte("evio"), 0o644))
		}
	}

	return fixture{catalogPath: catalogPath, searchPath: searchPath}
}

func TestComputeAll(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n42,10,100.0\n",
		map[string]int{"hps_00042": 5},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})
	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, 42, r.RunNumber)
	assert.Equal(t, 5, r.FoundFiles)
	assert.Equal(t, 10, r.ExpectedFiles)
	assert.InDelta(t, 0.5, r.Fraction, 1e-9)
	assert.InDelta(t, 100.0, r.FullLuminosity, 1e-9)
	assert.InDelta(t, 50.0, r.Luminosity, 1e-9)
}

func TestComputeAll_Formula(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n"+
			"1,4,2.0\n"+
			"2,3,9.0\n"+
			"3,5,0.0\n",
		map[string]int{"hps_1": 1, "hps_2": 2, "hps_3": 5},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})
	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 3)
	for _, r := range results {
		want := float64(r.FoundFiles) / float64(r.ExpectedFiles) * r.FullLuminosity
		assert.InDelta(t, want, r.Luminosity, 1e-9, "run %d", r.RunNumber)
	}
}

func TestComputeAll_SortedByRunNumber(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n"+
			"10050,1,1.0\n10010,1,1.0\n10030,1,1.0\n10020,1,1.0\n",
		map[string]int{
			"hps_10050": 1, "hps_10010": 1, "hps_10030": 1, "hps_10020": 1,
		},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})
	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].RunNumber, results[i].RunNumber)
	}
}

func TestComputeAll_InnerJoin(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n"+
			"1,10,1.0\n"+ // in catalog and on disk
			"2,10,1.0\n", // in catalog only
		map[string]int{
			"hps_1": 3,
			"hps_9": 3, // on disk only
		},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})
	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].RunNumber)

	stats := c.Stats()
	assert.Equal(t, 2, stats.CatalogRuns)
	assert.Equal(t, 2, stats.FoldersFound)
	assert.Equal(t, 1, stats.RunsMatched)
}

func TestComputeAll_OverCompleteNotClamped(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n42,4,10.0\n",
		map[string]int{"hps_42": 6},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})
	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 1.5, results[0].Fraction, 1e-9)
	assert.InDelta(t, 15.0, results[0].Luminosity, 1e-9)
}

func TestTotalLuminosity(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n"+
			"1,2,10.0\n2,4,20.0\n",
		map[string]int{"hps_1": 1, "hps_2": 1},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})

	total, err := c.TotalLuminosity(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10.0, total, 1e-9) // 0.5*10 + 0.25*20

	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, Total(results), total, 1e-9)
}

func TestTotalLuminosity_NoMatches(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n1,2,10.0\n",
		nil,
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})

	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)

	total, err := c.TotalLuminosity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestNew_NoIOUntilCompute(t *testing.T) {
	// Construction with a bogus catalog must not fail; the load error
	// surfaces on first use.
	c := New(Options{CatalogPath: "/does/not/exist.csv", SearchPath: t.TempDir()})

	_, err := c.ComputeAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrCatalogLoad)
}

func TestComputeAll_ScanError(t *testing.T) {
	fx := newFixture(t, "x,evio_files_count,luminosity\n1,2,10.0\n", nil)

	c := New(Options{
		CatalogPath: fx.catalogPath,
		SearchPath:  filepath.Join(fx.searchPath, "missing"),
	})

	_, err := c.ComputeAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, discover.ErrScanRoot)
}

func TestComputeAll_RescansEachCall(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n42,4,10.0\n",
		map[string]int{"hps_42": 1},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})

	total, err := c.TotalLuminosity(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2.5, total, 1e-9)

	// More files land; the next compute must see them.
	extra := filepath.Join(fx.searchPath, "hps_42", "run.evio.z")
	require.NoError(t, os.WriteFile(extra, []byte("evio"), 0o644))

	total, err = c.TotalLuminosity(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, total, 1e-9)
}

func TestComputeAll_DuplicateCatalogRowLastWins(t *testing.T) {
	fx := newFixture(t,
		"x,evio_files_count,luminosity\n"+
			"42,10,100.0\n"+
			"42,5,50.0\n",
		map[string]int{"hps_42": 5},
	)

	c := New(Options{CatalogPath: fx.catalogPath, SearchPath: fx.searchPath})
	results, err := c.ComputeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].ExpectedFiles)
	assert.InDelta(t, 50.0, results[0].Luminosity, 1e-9)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 0.0, Total(nil))
	assert.InDelta(t, 7.5, Total([]RunResult{
		{Luminosity: 5.0},
		{Luminosity: 2.5},
	}), 1e-9)
}
