package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(region, state string, month int, rate float64) Record {
	name, _ := MonthName(month)
	return Record{
		Region:                  region,
		State:                   state,
		UnemploymentRate:        rate,
		EmployedCount:           rate * 1000,
		LabourParticipationRate: 40 + rate,
		Longitude:               float64(month) * 2,
		Latitude:                70 + rate/2,
		MonthNumber:             month,
		MonthName:               name,
	}
}

func TestSummarize(t *testing.T) {
	t.Run("five number summary", func(t *testing.T) {
		records := []Record{
			rec("South", "Kerala", 1, 1),
			rec("South", "Kerala", 2, 2),
			rec("South", "Kerala", 3, 3),
			rec("South", "Kerala", 4, 4),
			rec("South", "Kerala", 5, 5),
		}

		stats := Summarize(records, UnemploymentRate)

		require.Len(t, stats.Fields, 1)
		s, ok := stats.Get(UnemploymentRate)
		require.True(t, ok)
		assert.False(t, s.NoData)
		assert.Equal(t, 5, s.Count)
		assert.InDelta(t, 3.0, s.Mean, 1e-12)
		assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)
		assert.Equal(t, 1.0, s.Min)
		assert.Equal(t, 2.0, s.Q1)
		assert.Equal(t, 3.0, s.Median)
		assert.Equal(t, 4.0, s.Q3)
		assert.Equal(t, 5.0, s.Max)
	})

	t.Run("quartiles interpolate", func(t *testing.T) {
		records := []Record{
			rec("South", "Kerala", 1, 1),
			rec("South", "Kerala", 2, 2),
			rec("South", "Kerala", 3, 3),
			rec("South", "Kerala", 4, 4),
		}

		s, _ := Summarize(records, UnemploymentRate).Get(UnemploymentRate)

		assert.InDelta(t, 1.75, s.Q1, 1e-12)
		assert.InDelta(t, 2.5, s.Median, 1e-12)
		assert.InDelta(t, 3.25, s.Q3, 1e-12)
	})

	t.Run("default fields", func(t *testing.T) {
		stats := Summarize([]Record{rec("South", "Kerala", 1, 1)})

		require.Len(t, stats.Fields, 3)
		assert.Equal(t, UnemploymentRate, stats.Fields[0].Field)
		assert.Equal(t, EmployedCount, stats.Fields[1].Field)
		assert.Equal(t, LabourParticipationRate, stats.Fields[2].Field)
		assert.True(t, math.IsNaN(stats.Fields[0].Std))
	})

	t.Run("empty input reports no data", func(t *testing.T) {
		stats := Summarize(nil, UnemploymentRate, Latitude)

		require.Len(t, stats.Fields, 2)
		for _, s := range stats.Fields {
			assert.True(t, s.NoData)
			assert.Equal(t, 0, s.Count)
			assert.True(t, math.IsNaN(s.Mean))
		}
	})
}

func TestGroupMeans(t *testing.T) {
	records := []Record{
		rec("South", "Kerala", 1, 4),
		rec("North", "Punjab", 1, 10),
		rec("South", "Kerala", 2, 5),
		rec("South", "Goa", 1, 3.333),
		rec("North", "Punjab", 2, 11),
	}

	t.Run("row per distinct key in first-seen order", func(t *testing.T) {
		table := GroupMeans(records, ByState)

		require.Len(t, table.Rows, 3)
		assert.Equal(t, "Kerala", table.Rows[0].Key())
		assert.Equal(t, "Punjab", table.Rows[1].Key())
		assert.Equal(t, "Goa", table.Rows[2].Key())
		assert.Equal(t, []Field{UnemploymentRate, EmployedCount, LabourParticipationRate}, table.Fields)

		m, ok := table.Mean(0, UnemploymentRate)
		require.True(t, ok)
		assert.Equal(t, 4.5, m)
		assert.Equal(t, 2, table.Rows[0].Count)
	})

	t.Run("singleton group mean is the value rounded", func(t *testing.T) {
		table := GroupMeans(records, ByState, UnemploymentRate)

		row, ok := table.Lookup("Goa")
		require.True(t, ok)
		assert.Equal(t, 3.33, row.Means[0])
		assert.Equal(t, 1, row.Count)
	})

	t.Run("group by region", func(t *testing.T) {
		table := GroupMeans(records, ByRegion, UnemploymentRate)

		require.Len(t, table.Rows, 2)
		assert.Equal(t, []string{"region"}, table.Key.Names())
		row, _ := table.Lookup("North")
		assert.Equal(t, 10.5, row.Means[0])
	})

	t.Run("group by region and state", func(t *testing.T) {
		table := GroupMeans(records, ByRegionState, UnemploymentRate)

		require.Len(t, table.Rows, 3)
		assert.Equal(t, []string{"South", "Kerala"}, table.Rows[0].Keys)
		assert.Equal(t, "South/Kerala", table.Rows[0].Key())
	})

	t.Run("no records no rows", func(t *testing.T) {
		table := GroupMeans(nil, ByState)
		assert.Empty(t, table.Rows)
	})
}

func TestStateRanking(t *testing.T) {
	records := []Record{
		rec("South", "Kerala", 1, 9),
		rec("North", "Punjab", 1, 2),
		rec("South", "Goa", 1, 5),
		rec("East", "Bihar", 1, 5),
	}

	table := StateRanking(records)

	var got []string
	for _, r := range table.Rows {
		got = append(got, r.Key())
	}
	assert.Equal(t, []string{"Punjab", "Goa", "Bihar", "Kerala"}, got)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 4.0, Round2(4.0))
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.236))
	assert.Equal(t, 0.12, Round2(0.125))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
}
