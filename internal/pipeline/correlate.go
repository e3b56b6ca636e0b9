package pipeline

import (
	"errors"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

var errTooFewRows = errors.New("correlation needs at least 2 observations")

// CorrelationMatrix is a symmetric Pearson matrix. Values[i][j] correlates
// Fields[i] with Fields[j].
type CorrelationMatrix struct {
	Fields []Field
	Values [][]float64
	// NoData marks a matrix that could not be computed; every value is NaN.
	NoData bool
}

// NoDataMatrix returns an all-NaN matrix over fields.
func NoDataMatrix(fields ...Field) CorrelationMatrix {
	if len(fields) == 0 {
		fields = DefaultCorrelationFields
	}
	values := make([][]float64, len(fields))
	for i := range values {
		values[i] = make([]float64, len(fields))
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}
	return CorrelationMatrix{Fields: fields, Values: values, NoData: true}
}

// At returns the coefficient for the pair (a, b).
func (m CorrelationMatrix) At(a, b Field) (float64, bool) {
	i, j := -1, -1
	for k, f := range m.Fields {
		if f == a {
			i = k
		}
		if f == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

// Correlate computes pairwise Pearson correlation between fields. A field with
// zero variance yields NaN on its whole row and column, diagonal included.
func Correlate(records []Record, fields ...Field) (CorrelationMatrix, error) {
	if len(fields) == 0 {
		fields = DefaultCorrelationFields
	}
	if len(records) < 2 {
		return CorrelationMatrix{}, newError(KindInsufficientData, StageCorrelate, -1, "",
			strconv.Itoa(len(records)), errTooFewRows)
	}

	cols := make([][]float64, len(fields))
	constant := make([]bool, len(fields))
	for i, f := range fields {
		cols[i] = column(records, f)
		constant[i] = stat.Variance(cols[i], nil) == 0
	}

	values := make([][]float64, len(fields))
	for i := range values {
		values[i] = make([]float64, len(fields))
	}
	for i := range fields {
		for j := i; j < len(fields); j++ {
			var r float64
			switch {
			case constant[i] || constant[j]:
				r = math.NaN()
			case i == j:
				r = 1
			default:
				r = clamp(stat.Correlation(cols[i], cols[j], nil))
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return CorrelationMatrix{Fields: fields, Values: values}, nil
}

func clamp(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
