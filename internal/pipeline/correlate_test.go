package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate(t *testing.T) {
	records := []Record{
		rec("South", "Kerala", 1, 3),
		rec("South", "Kerala", 2, 7),
		rec("North", "Punjab", 3, 4),
		rec("North", "Punjab", 4, 9),
		rec("East", "Bihar", 7, 12),
	}

	t.Run("symmetric with unit diagonal", func(t *testing.T) {
		m, err := Correlate(records)

		require.NoError(t, err)
		require.Len(t, m.Values, len(DefaultCorrelationFields))
		for i := range m.Values {
			require.Len(t, m.Values[i], len(m.Fields))
			assert.InDelta(t, 1.0, m.Values[i][i], 1e-12)
			for j := range m.Values {
				assert.Equal(t, m.Values[i][j], m.Values[j][i])
				assert.LessOrEqual(t, math.Abs(m.Values[i][j]), 1.0)
			}
		}
	})

	t.Run("linear fields correlate perfectly", func(t *testing.T) {
		m, err := Correlate(records, UnemploymentRate, EmployedCount, MonthNumberField)

		require.NoError(t, err)
		r, ok := m.At(UnemploymentRate, EmployedCount)
		require.True(t, ok)
		assert.InDelta(t, 1.0, r, 1e-12)

		r, ok = m.At(MonthNumberField, UnemploymentRate)
		require.True(t, ok)
		assert.Greater(t, r, 0.0)

		_, ok = m.At(Latitude, UnemploymentRate)
		assert.False(t, ok)
	})

	t.Run("zero variance is undefined", func(t *testing.T) {
		flat := []Record{
			rec("South", "Kerala", 1, 5),
			rec("South", "Kerala", 2, 5),
			rec("South", "Kerala", 3, 5),
		}

		m, err := Correlate(flat, UnemploymentRate, MonthNumberField)

		require.NoError(t, err)
		assert.True(t, math.IsNaN(m.Values[0][0]))
		assert.True(t, math.IsNaN(m.Values[0][1]))
		assert.True(t, math.IsNaN(m.Values[1][0]))
		assert.Equal(t, 1.0, m.Values[1][1])
	})

	t.Run("fewer than two observations", func(t *testing.T) {
		_, err := Correlate(records[:1])

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrInsufficientData)
		assert.Equal(t, StageCorrelate, pe.Stage)
		assert.Equal(t, -1, pe.Row)
	})
}
