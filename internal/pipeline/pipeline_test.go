package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() [][]string {
	states := []struct{ name, region string }{
		{"Kerala", "South"},
		{"Punjab", "North"},
		{"Bihar", "East"},
	}
	var rows [][]string
	for si, s := range states {
		for m := 1; m <= 7; m++ {
			rate := fmt.Sprintf("%.2f", float64(si+1)*2+float64(m)*0.5)
			row := rawRow(s.name, fmt.Sprintf(" 28-%02d-2020", m), rate, s.region)
			row[4] = fmt.Sprintf("%d", 1000*(si+1)+37*m)
			row[5] = fmt.Sprintf("%.1f", 40+float64(si)+0.3*float64(m))
			row[7] = fmt.Sprintf("%.2f", 70+3*float64(si))
			row[8] = fmt.Sprintf("%.2f", 10+4*float64(si))
			rows = append(rows, row)
		}
	}
	return rows
}

func TestPipeline_Run(t *testing.T) {
	t.Run("derives every table", func(t *testing.T) {
		tables, err := New().Run(sourceHeader, sampleRows())

		require.NoError(t, err)
		assert.Len(t, tables.Summary.Fields, 3)
		assert.Len(t, tables.RegionStats.Rows, 3)
		assert.Len(t, tables.RegionStateMeans.Rows, 3)
		assert.Len(t, tables.Correlation.Fields, 6)
		assert.Len(t, tables.StateRanking.Rows, 3)
		assert.Len(t, tables.LockdownImpact.Rows, 3)

		assert.Equal(t, "Kerala", tables.StateRanking.Rows[0].Key())
		for i := 1; i < len(tables.LockdownImpact.Rows); i++ {
			assert.LessOrEqual(t,
				tables.LockdownImpact.Rows[i-1].PercentChange,
				tables.LockdownImpact.Rows[i].PercentChange)
		}
	})

	t.Run("constant rate scenario", func(t *testing.T) {
		var rows [][]string
		for _, s := range []string{"Kerala", "Punjab", "Bihar"} {
			for m := 1; m <= 7; m++ {
				rows = append(rows, rawRow(s, fmt.Sprintf("15-%02d-2020", m), "5.0", "R"))
			}
		}

		tables, err := New().Run(nil, rows)

		require.NoError(t, err)
		require.Len(t, tables.LockdownImpact.Rows, 3)
		for _, r := range tables.LockdownImpact.Rows {
			assert.Equal(t, 4.0, r.PercentChange)
			assert.Equal(t, "Tier1", r.ImpactTier.String())
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		p := New()
		first, err := p.Run(sourceHeader, sampleRows())
		require.NoError(t, err)
		second, err := p.Run(sourceHeader, sampleRows())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("normalization failure aborts", func(t *testing.T) {
		rows := sampleRows()
		rows[4][1] = "not a date"

		tables, err := New().Run(sourceHeader, rows)

		assert.Nil(t, tables)
		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 4, pe.Row)
		assert.Equal(t, StageNormalize, pe.Stage)
	})

	t.Run("bad header aborts", func(t *testing.T) {
		_, err := New().Run([]string{"a", "b"}, sampleRows())
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("single row keeps the other tables", func(t *testing.T) {
		tables, err := New().Run(nil, sampleRows()[:1])

		require.NoError(t, err)
		assert.True(t, tables.Correlation.NoData)
		assert.Equal(t, DefaultCorrelationFields, tables.Correlation.Fields)
		for _, row := range tables.Correlation.Values {
			for _, v := range row {
				assert.True(t, math.IsNaN(v))
			}
		}
		require.Len(t, tables.Summary.Fields, 3)
		assert.Equal(t, 1, tables.Summary.Fields[0].Count)
		assert.Len(t, tables.StateRanking.Rows, 1)
		assert.Len(t, tables.LockdownImpact.Rows, 1)

		_, err = New().Correlate(&Dataset{Records: []Record{{}}})
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("options", func(t *testing.T) {
		c := DefaultComparator()
		c.Delta = DeltaPercent
		p := New(
			WithComparator(c),
			WithCorrelationFields(UnemploymentRate, Latitude),
			WithSummaryFields(Longitude),
		)

		tables, err := p.Run(nil, sampleRows())

		require.NoError(t, err)
		assert.Equal(t, DeltaPercent, p.Comparator().Delta)
		assert.Equal(t, []Field{UnemploymentRate, Latitude}, tables.Correlation.Fields)
		require.Len(t, tables.Summary.Fields, 1)
		assert.Equal(t, Longitude, tables.Summary.Fields[0].Field)
	})
}
