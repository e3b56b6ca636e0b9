package grpc

import (
	"math"
	"testing"

	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestTableToStruct(t *testing.T) {
	t.Run("round trip keeps column order", func(t *testing.T) {
		in := pipeline.Table{
			Name:    "lockdownImpact",
			Columns: []string{"state", "percentChange", "impactTier", "hasBefore"},
			Rows: [][]any{
				{"Kerala", 3.0, "Tier1", true},
				{"Punjab", 12.5, "Tier2", true},
			},
		}

		s, err := TableToStruct(in)
		require.NoError(t, err)
		out, err := TableFromStruct(s)
		require.NoError(t, err)

		assert.Equal(t, in, out)
	})

	t.Run("undefined numbers stay float64", func(t *testing.T) {
		in := pipeline.Table{
			Name:    "lockdownImpact",
			Columns: []string{"state", "percentChange", "unemploymentRateBefore", "unemploymentRateAfter"},
			Rows:    [][]any{{"Sikkim", math.NaN(), math.Inf(1), math.Inf(-1)}},
		}

		s, err := TableToStruct(in)
		require.NoError(t, err)
		out, err := TableFromStruct(s)
		require.NoError(t, err)

		row := out.Rows[0]
		require.IsType(t, 0.0, row[1])
		require.IsType(t, 0.0, row[2])
		require.IsType(t, 0.0, row[3])
		assert.True(t, math.IsNaN(row[1].(float64)))
		assert.True(t, math.IsInf(row[2].(float64), 1))
		assert.True(t, math.IsInf(row[3].(float64), -1))
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := TableToStruct(pipeline.Table{Name: "x", Columns: []string{"a", "b"}, Rows: [][]any{{1}}})
		assert.ErrorContains(t, err, "1 cells for 2 columns")
	})

	t.Run("unsupported cell", func(t *testing.T) {
		_, err := TableToStruct(pipeline.Table{Name: "x", Columns: []string{"a"}, Rows: [][]any{{struct{}{}}}})
		assert.ErrorContains(t, err, "column a")
	})
}

func TestTableFromStruct(t *testing.T) {
	t.Run("missing columns", func(t *testing.T) {
		_, err := TableFromStruct(&structpb.Struct{})
		assert.Error(t, err)
	})

	t.Run("row missing a column", func(t *testing.T) {
		s, err := structpb.NewStruct(map[string]any{
			"name":    "t",
			"columns": []any{"a", "b"},
			"rows":    []any{map[string]any{"a": 1.0}},
		})
		require.NoError(t, err)

		_, err = TableFromStruct(s)
		assert.ErrorContains(t, err, "missing column b")
	})
}
