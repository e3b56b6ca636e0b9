package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTables_All(t *testing.T) {
	tables, err := New().Run(sourceHeader, sampleRows())
	require.NoError(t, err)

	all := tables.All()

	require.Len(t, all, 6)
	names := make([]string, len(all))
	for i, tb := range all {
		names[i] = tb.Name
		for _, row := range tb.Rows {
			assert.Len(t, row, len(tb.Columns), "table %s", tb.Name)
		}
	}
	assert.Equal(t, []string{
		TableSummary, TableRegionStats, TableRegionStateMeans,
		TableCorrelation, TableStateRanking, TableLockdownImpact,
	}, names)

	assert.Equal(t, []string{"region", "state", "count", "unemploymentRate"}, all[2].Columns)
	assert.Equal(t, "unemploymentRate", all[3].Rows[0][0])
	assert.Equal(t, 1.0, all[3].Rows[0][1])
	assert.Equal(t, "Tier1", all[5].Rows[0][4])
	assert.Equal(t, "impacted", all[5].Rows[0][5])
}
