package report

import (
	"path/filepath"
	"testing"

	"hypoavg/domain/average"
	"hypoavg/internal/aggregate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"
)

func doc(denomination string, count, apriori, posterior int, evidence ...average.EvidenceDocument) *average.Document {
	return &average.Document{
		Count:            count,
		ObservationCount: count,
		Title:            "resurrection",
		Denomination:     denomination,
		AprioriPct:       apriori,
		PosteriorPct:     posterior,
		Evidence:         evidence,
	}
}

func fixture() []aggregate.PublishedHypothesis {
	tomb := average.EvidenceDocument{ID: 1, Head: "Tomb", Count: 2, CountDisregard: 1, CountDisregardPct: 50, PehPct: 80, PenhPct: 20, Weight: 2}
	return []aggregate.PublishedHypothesis{{
		Name:   "resurrection",
		Rollup: doc(average.RollupDenomination, 2, 40, 60, tomb),
		Variants: []aggregate.PublishedVariant{
			{Name: "catholic", Document: doc("catholic", 2, 30, 50, tomb)},
			{Name: "lutheran", Document: doc("lutheran", 3, 50, 70)},
		},
	}}
}

func TestSpread_MatchesPopulationStatistics(t *testing.T) {
	spread, err := Spread(fixture()[0])
	require.NoError(t, err)

	assert.Equal(t, 2, spread.Variants)
	assert.InDelta(t, 40.0, spread.AprioriMean, 1e-9)

	_, variance := stat.PopMeanVariance([]float64{30, 50}, nil)
	assert.InDelta(t, variance, spread.AprioriStdDev*spread.AprioriStdDev, 1e-9)
	assert.InDelta(t, 10.0, spread.PosteriorStdDev, 1e-9)

	empty, err := Spread(aggregate.PublishedHypothesis{Name: "x"})
	require.NoError(t, err)
	assert.Zero(t, empty.Variants)
}

func TestExport_WritesSummaryAndEvidenceSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "averages.xlsx")
	require.NoError(t, Export(fixture(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, "resurrection"}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 7)
	assert.Equal(t, []string{"Hypothesis", "Variant", "Count", "Observations", "Apriori %", "Posterior %"}, rows[0])
	assert.Equal(t, []string{"resurrection", "All", "2", "2", "40", "60"}, rows[1])
	assert.Equal(t, []string{"resurrection", "catholic", "2", "2", "30", "50"}, rows[2])
	assert.Equal(t, []string{"resurrection", "lutheran", "3", "3", "50", "70"}, rows[3])
	assert.Equal(t, "Apriori mean", rows[5][2])
	assert.Equal(t, []string{"resurrection", "2", "40", "10", "60", "10"}, rows[6])

	evidence, err := f.GetRows("resurrection")
	require.NoError(t, err)
	require.Len(t, evidence, 3)
	assert.Equal(t, []string{"All", "1", "Tomb", "2", "1", "50", "80", "20", "2"}, evidence[1])
	assert.Equal(t, "catholic", evidence[2][0])
}

func TestSheetName_TruncatesAndDeduplicates(t *testing.T) {
	used := map[string]bool{"summary": true}
	assert.Equal(t, "Summary~2", sheetName("Summary", used))

	long := "a-very-long-hypothesis-name-that-overflows"
	first := sheetName(long, used)
	assert.Len(t, first, maxSheetName)
	second := sheetName(long, used)
	assert.Len(t, second, maxSheetName)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "~2", second[len(second)-2:])
}
