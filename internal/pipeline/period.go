package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Window is an inclusive month range.
type Window struct {
	From int
	To   int
}

// Contains reports whether month lies in the window.
func (w Window) Contains(month int) bool {
	return month >= w.From && month <= w.To
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.From, w.To)
}

// JoinMode selects how the before and after aggregates are aligned.
type JoinMode int

const (
	// JoinByKey matches rows on state name.
	JoinByKey JoinMode = iota
	// JoinPositional pairs rows by index, as the published analysis did.
	JoinPositional
)

func (m JoinMode) String() string {
	if m == JoinPositional {
		return "positional"
	}
	return "key"
}

// ParseJoinMode accepts "key" or "positional".
func ParseJoinMode(s string) (JoinMode, error) {
	switch s {
	case "key":
		return JoinByKey, nil
	case "positional":
		return JoinPositional, nil
	}
	return 0, fmt.Errorf("unknown join mode %q", s)
}

// DeltaFormula selects the change arithmetic.
type DeltaFormula int

const (
	// DeltaLiteral computes after - before/before, which reduces to after - 1.
	// It reproduces the published figures.
	DeltaLiteral DeltaFormula = iota
	// DeltaPercent computes (after - before) / before * 100.
	DeltaPercent
)

func (d DeltaFormula) String() string {
	if d == DeltaPercent {
		return "percent"
	}
	return "literal"
}

// ParseDeltaFormula accepts "literal" or "percent".
func ParseDeltaFormula(s string) (DeltaFormula, error) {
	switch s {
	case "literal":
		return DeltaLiteral, nil
	case "percent":
		return DeltaPercent, nil
	}
	return 0, fmt.Errorf("unknown delta formula %q", s)
}

// Apply computes the rounded change. A zero before value yields NaN or ±Inf.
func (d DeltaFormula) Apply(after, before float64) float64 {
	if d == DeltaPercent {
		return Round2((after - before) / before * 100)
	}
	return Round2(after - (before / before))
}

// TierLevel is the ordinal impact bucket.
type TierLevel int

const (
	Unclassified TierLevel = iota
	Tier1
	Tier2
	Tier3
	Tier4
)

// ImpactTier classifies a change value. Raw always carries the classified
// value; for Unclassified it is the value passed through.
type ImpactTier struct {
	Level TierLevel
	Raw   float64
}

var tierLabels = map[TierLevel]string{
	Tier1: "impacted",
	Tier2: "hard-impacted",
	Tier3: "harder-impacted",
	Tier4: "hardest-impacted",
}

func (t ImpactTier) String() string {
	if t.Level == Unclassified {
		return "Unclassified(" + strconv.FormatFloat(t.Raw, 'f', -1, 64) + ")"
	}
	return "Tier" + strconv.Itoa(int(t.Level))
}

// Label is the human description of the tier.
func (t ImpactTier) Label() string {
	if l, ok := tierLabels[t.Level]; ok {
		return l
	}
	return "unclassified"
}

// Classify buckets x: up to 10, 20, 30 and 40 map to Tier1..Tier4. Anything
// above 40, and NaN, is passed through as Unclassified.
func Classify(x float64) ImpactTier {
	switch {
	case x <= 10:
		return ImpactTier{Level: Tier1, Raw: x}
	case x <= 20:
		return ImpactTier{Level: Tier2, Raw: x}
	case x <= 30:
		return ImpactTier{Level: Tier3, Raw: x}
	case x <= 40:
		return ImpactTier{Level: Tier4, Raw: x}
	}
	return ImpactTier{Level: Unclassified, Raw: x}
}

// PeriodComparisonRow is the before/after result for one state. HasBefore and
// HasAfter are false when the state had no records in that window.
type PeriodComparisonRow struct {
	State                  string
	UnemploymentRateAfter  float64
	UnemploymentRateBefore float64
	PercentChange          float64
	ImpactTier             ImpactTier
	HasBefore              bool
	HasAfter               bool
}

// PeriodComparison is the sorted comparison table.
type PeriodComparison struct {
	Before Window
	After  Window
	Join   JoinMode
	Delta  DeltaFormula
	Rows   []PeriodComparisonRow
}

// Comparator splits records at the lockdown boundary and compares states.
type Comparator struct {
	Before Window
	After  Window
	Join   JoinMode
	Delta  DeltaFormula
}

// DefaultComparator compares months 1-4 against 4-7. Month 4 falls in both.
func DefaultComparator() Comparator {
	return Comparator{
		Before: Window{From: 1, To: 4},
		After:  Window{From: 4, To: 7},
		Join:   JoinByKey,
		Delta:  DeltaLiteral,
	}
}

var errJoinLength = errors.New("before and after aggregates differ in length")

// Split partitions records into the before and after windows. A record in both
// windows is returned in both.
func (c Comparator) Split(records []Record) (before, after []Record) {
	for _, r := range records {
		if c.Before.Contains(r.MonthNumber) {
			before = append(before, r)
		}
		if c.After.Contains(r.MonthNumber) {
			after = append(after, r)
		}
	}
	return before, after
}

// Compare runs split, per-state aggregation, join, delta, sort and classify.
func (c Comparator) Compare(records []Record) (PeriodComparison, error) {
	before, after := c.Split(records)
	beforeMeans := groupMeans(before, ByState, false, UnemploymentRate)
	afterMeans := groupMeans(after, ByState, false, UnemploymentRate)

	var rows []PeriodComparisonRow
	var err error
	if c.Join == JoinPositional {
		rows, err = joinPositional(afterMeans, beforeMeans)
	} else {
		rows = joinByKey(afterMeans, beforeMeans)
	}
	if err != nil {
		return PeriodComparison{}, err
	}

	for i := range rows {
		r := &rows[i]
		if r.HasBefore && r.HasAfter {
			r.PercentChange = c.Delta.Apply(r.UnemploymentRateAfter, r.UnemploymentRateBefore)
		} else {
			r.PercentChange = math.NaN()
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return lessNaNLast(rows[a].PercentChange, rows[b].PercentChange)
	})

	for i := range rows {
		rows[i].ImpactTier = Classify(rows[i].PercentChange)
	}

	return PeriodComparison{
		Before: c.Before,
		After:  c.After,
		Join:   c.Join,
		Delta:  c.Delta,
		Rows:   rows,
	}, nil
}

// joinPositional pairs the i-th after row with the i-th before row and keeps
// the after row's state name.
func joinPositional(after, before GroupTable) ([]PeriodComparisonRow, error) {
	if len(after.Rows) != len(before.Rows) {
		return nil, newError(KindDomain, StageCompare, -1, ColState,
			fmt.Sprintf("%d/%d", len(after.Rows), len(before.Rows)), errJoinLength)
	}
	rows := make([]PeriodComparisonRow, len(after.Rows))
	for i := range after.Rows {
		rows[i] = PeriodComparisonRow{
			State:                  after.Rows[i].Key(),
			UnemploymentRateAfter:  after.Rows[i].Means[0],
			UnemploymentRateBefore: before.Rows[i].Means[0],
			HasBefore:              true,
			HasAfter:               true,
		}
	}
	return rows, nil
}

// joinByKey matches states by name. States appear in before-window order,
// followed by states only seen after.
func joinByKey(after, before GroupTable) []PeriodComparisonRow {
	rows := make([]PeriodComparisonRow, 0, len(before.Rows))
	index := make(map[string]int, len(before.Rows))

	for _, b := range before.Rows {
		index[b.Key()] = len(rows)
		rows = append(rows, PeriodComparisonRow{
			State:                  b.Key(),
			UnemploymentRateAfter:  math.NaN(),
			UnemploymentRateBefore: b.Means[0],
			HasBefore:              true,
		})
	}
	for _, a := range after.Rows {
		i, ok := index[a.Key()]
		if !ok {
			rows = append(rows, PeriodComparisonRow{
				State:                  a.Key(),
				UnemploymentRateAfter:  a.Means[0],
				UnemploymentRateBefore: math.NaN(),
				HasAfter:               true,
			})
			continue
		}
		rows[i].UnemploymentRateAfter = a.Means[0]
		rows[i].HasAfter = true
	}
	return rows
}
