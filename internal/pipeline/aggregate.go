package pipeline

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldSummary is the describe() row of one numeric field. NoData is set when
// there were no observations; the numeric members are then NaN.
type FieldSummary struct {
	Field  Field
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	NoData bool
}

// DescriptiveStats holds one FieldSummary per requested field, in request order.
type DescriptiveStats struct {
	Fields []FieldSummary
}

// Get returns the summary for f.
func (d DescriptiveStats) Get(f Field) (FieldSummary, bool) {
	for _, s := range d.Fields {
		if s.Field == f {
			return s, true
		}
	}
	return FieldSummary{}, false
}

// Summarize computes count, mean, sample standard deviation, min, quartiles and
// max for each field.
func Summarize(records []Record, fields ...Field) DescriptiveStats {
	if len(fields) == 0 {
		fields = LaborFields
	}
	out := DescriptiveStats{Fields: make([]FieldSummary, 0, len(fields))}
	for _, f := range fields {
		out.Fields = append(out.Fields, summarizeField(column(records, f), f))
	}
	return out
}

func summarizeField(x []float64, f Field) FieldSummary {
	if len(x) == 0 {
		nan := math.NaN()
		return FieldSummary{Field: f, Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan, NoData: true}
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	std := math.NaN()
	mean := stat.Mean(x, nil)
	if len(x) > 1 {
		_, std = stat.MeanStdDev(x, nil)
	}
	return FieldSummary{
		Field:  f,
		Count:  len(x),
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(x),
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    floats.Max(x),
	}
}

// quantile interpolates linearly between the closest ranks of sorted data,
// matching pandas describe().
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func column(records []Record, f Field) []float64 {
	x := make([]float64, len(records))
	for i, r := range records {
		x[i] = f.Value(r)
	}
	return x
}

// GroupKey selects the grouping columns of GroupMeans.
type GroupKey int

const (
	ByRegion GroupKey = iota
	ByState
	ByRegionState
)

// Names returns the column names of the key.
func (k GroupKey) Names() []string {
	switch k {
	case ByRegion:
		return []string{ColRegion}
	case ByState:
		return []string{ColState}
	default:
		return []string{ColRegion, ColState}
	}
}

func (k GroupKey) values(r Record) []string {
	switch k {
	case ByRegion:
		return []string{r.Region}
	case ByState:
		return []string{r.State}
	default:
		return []string{r.Region, r.State}
	}
}

// GroupRow is one group of a GroupTable. Means is aligned with GroupTable.Fields.
type GroupRow struct {
	Keys  []string
	Count int
	Means []float64
}

// Key joins the key values with "/".
func (r GroupRow) Key() string {
	return strings.Join(r.Keys, "/")
}

// GroupTable is the result of GroupMeans.
type GroupTable struct {
	Key    GroupKey
	Fields []Field
	Rows   []GroupRow
}

// Mean returns the rounded mean of f in row i.
func (t GroupTable) Mean(i int, f Field) (float64, bool) {
	for j, tf := range t.Fields {
		if tf == f {
			return t.Rows[i].Means[j], true
		}
	}
	return math.NaN(), false
}

// Lookup finds the row for a joined key.
func (t GroupTable) Lookup(key string) (GroupRow, bool) {
	for _, r := range t.Rows {
		if r.Key() == key {
			return r, true
		}
	}
	return GroupRow{}, false
}

// SortBy returns a copy of t ordered ascending by the mean of f. Ties keep
// their relative order.
func (t GroupTable) SortBy(f Field) GroupTable {
	idx := -1
	for j, tf := range t.Fields {
		if tf == f {
			idx = j
		}
	}
	out := GroupTable{Key: t.Key, Fields: t.Fields, Rows: make([]GroupRow, len(t.Rows))}
	copy(out.Rows, t.Rows)
	if idx < 0 {
		return out
	}
	sort.SliceStable(out.Rows, func(a, b int) bool {
		return lessNaNLast(out.Rows[a].Means[idx], out.Rows[b].Means[idx])
	})
	return out
}

// GroupMeans groups records by key and averages each field, rounding to two
// decimals. Rows follow the first appearance of each key.
func GroupMeans(records []Record, key GroupKey, fields ...Field) GroupTable {
	return groupMeans(records, key, true, fields...)
}

func groupMeans(records []Record, key GroupKey, round bool, fields ...Field) GroupTable {
	if len(fields) == 0 {
		fields = LaborFields
	}

	type acc struct {
		keys []string
		sums []float64
		n    int
	}
	order := make([]string, 0)
	groups := make(map[string]*acc)

	for _, r := range records {
		keys := key.values(r)
		k := strings.Join(keys, "\x00")
		g, ok := groups[k]
		if !ok {
			g = &acc{keys: keys, sums: make([]float64, len(fields))}
			groups[k] = g
			order = append(order, k)
		}
		for j, f := range fields {
			g.sums[j] += f.Value(r)
		}
		g.n++
	}

	table := GroupTable{Key: key, Fields: fields, Rows: make([]GroupRow, 0, len(order))}
	for _, k := range order {
		g := groups[k]
		means := make([]float64, len(fields))
		for j := range fields {
			means[j] = g.sums[j] / float64(g.n)
			if round {
				means[j] = Round2(means[j])
			}
		}
		table.Rows = append(table.Rows, GroupRow{Keys: g.keys, Count: g.n, Means: means})
	}
	return table
}

// StateRanking is the per-state mean unemployment rate, lowest first.
func StateRanking(records []Record) GroupTable {
	return GroupMeans(records, ByState, UnemploymentRate).SortBy(UnemploymentRate)
}

// Round2 rounds half to even at two decimals.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.RoundToEven(x*100) / 100
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
