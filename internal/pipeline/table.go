package pipeline

// Table is the presentation view of a derived result: named columns and rows
// of uniformly shaped cells. Cells hold string, int, float64 or bool values.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Table names.
const (
	TableSummary          = "summary"
	TableRegionStats      = "regionStats"
	TableRegionStateMeans = "regionStateMeans"
	TableCorrelation      = "correlation"
	TableStateRanking     = "stateRanking"
	TableLockdownImpact   = "lockdownImpact"
)

func (d DescriptiveStats) Table() Table {
	t := Table{
		Name:    TableSummary,
		Columns: []string{"field", "count", "mean", "std", "min", "25%", "50%", "75%", "max", "noData"},
	}
	for _, s := range d.Fields {
		t.Rows = append(t.Rows, []any{
			s.Field.String(), s.Count, s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.NoData,
		})
	}
	return t
}

// Table renders the group table under name.
func (g GroupTable) Table(name string) Table {
	t := Table{Name: name, Columns: append(g.Key.Names(), "count")}
	for _, f := range g.Fields {
		t.Columns = append(t.Columns, f.String())
	}
	for _, r := range g.Rows {
		row := make([]any, 0, len(t.Columns))
		for _, k := range r.Keys {
			row = append(row, k)
		}
		row = append(row, r.Count)
		for _, m := range r.Means {
			row = append(row, m)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (m CorrelationMatrix) Table() Table {
	t := Table{Name: TableCorrelation, Columns: []string{"field"}}
	for _, f := range m.Fields {
		t.Columns = append(t.Columns, f.String())
	}
	for i, f := range m.Fields {
		row := []any{f.String()}
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (c PeriodComparison) Table() Table {
	t := Table{
		Name: TableLockdownImpact,
		Columns: []string{
			"state", "unemploymentRateAfter", "unemploymentRateBefore",
			"percentChange", "impactTier", "impactLabel", "hasBefore", "hasAfter",
		},
	}
	for _, r := range c.Rows {
		t.Rows = append(t.Rows, []any{
			r.State, r.UnemploymentRateAfter, r.UnemploymentRateBefore,
			r.PercentChange, r.ImpactTier.String(), r.ImpactTier.Label(), r.HasBefore, r.HasAfter,
		})
	}
	return t
}

// All returns every table in presentation order.
func (t *Tables) All() []Table {
	return []Table{
		t.Summary.Table(),
		t.RegionStats.Table(TableRegionStats),
		t.RegionStateMeans.Table(TableRegionStateMeans),
		t.Correlation.Table(),
		t.StateRanking.Table(TableStateRanking),
		t.LockdownImpact.Table(),
	}
}
