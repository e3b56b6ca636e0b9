// Package pipeline turns raw labor-statistics rows into the derived tables
// behind the dashboard: descriptive statistics, region and state means, a
// correlation matrix, a state ranking and the lockdown before/after comparison.
//
// Every function here is pure. A run takes the raw table and returns new
// values; nothing is cached or mutated between runs.
package pipeline

import "errors"

// Tables is the complete output of one run.
type Tables struct {
	Summary          DescriptiveStats
	RegionStats      GroupTable
	RegionStateMeans GroupTable
	Correlation      CorrelationMatrix
	StateRanking     GroupTable
	LockdownImpact   PeriodComparison
}

// Pipeline runs every stage over one raw table.
type Pipeline struct {
	comparator        Comparator
	correlationFields []Field
	summaryFields     []Field
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithComparator replaces the default lockdown comparator.
func WithComparator(c Comparator) Option {
	return func(p *Pipeline) { p.comparator = c }
}

// WithCorrelationFields overrides the heat-map fields.
func WithCorrelationFields(fields ...Field) Option {
	return func(p *Pipeline) { p.correlationFields = fields }
}

// WithSummaryFields overrides the fields of the descriptive statistics table.
func WithSummaryFields(fields ...Field) Option {
	return func(p *Pipeline) { p.summaryFields = fields }
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		comparator:        DefaultComparator(),
		correlationFields: DefaultCorrelationFields,
		summaryFields:     LaborFields,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Comparator returns the configured comparator.
func (p *Pipeline) Comparator() Comparator {
	return p.comparator
}

// Normalize validates an optional header and normalizes rows.
func (p *Pipeline) Normalize(header []string, rows [][]string) (*Dataset, error) {
	if header != nil {
		if err := CheckHeader(header); err != nil {
			return nil, err
		}
	}
	return Normalize(rows)
}

func (p *Pipeline) Summarize(ds *Dataset) DescriptiveStats {
	return Summarize(ds.Records, p.summaryFields...)
}

func (p *Pipeline) RegionStats(ds *Dataset) GroupTable {
	return GroupMeans(ds.Records, ByRegion, LaborFields...)
}

func (p *Pipeline) RegionStateMeans(ds *Dataset) GroupTable {
	return GroupMeans(ds.Records, ByRegionState, UnemploymentRate)
}

func (p *Pipeline) Correlate(ds *Dataset) (CorrelationMatrix, error) {
	return Correlate(ds.Records, p.correlationFields...)
}

func (p *Pipeline) StateRanking(ds *Dataset) GroupTable {
	return StateRanking(ds.Records)
}

func (p *Pipeline) Compare(ds *Dataset) (PeriodComparison, error) {
	return p.comparator.Compare(ds.Records)
}

// Run normalizes the raw table and derives every table. A header of nil skips
// the header check. Too few rows to correlate yields a NoData matrix rather
// than an error.
func (p *Pipeline) Run(header []string, rows [][]string) (*Tables, error) {
	ds, err := p.Normalize(header, rows)
	if err != nil {
		return nil, err
	}

	corr, err := p.Correlate(ds)
	switch {
	case errors.Is(err, ErrInsufficientData):
		corr = NoDataMatrix(p.correlationFields...)
	case err != nil:
		return nil, err
	}
	impact, err := p.Compare(ds)
	if err != nil {
		return nil, err
	}

	return &Tables{
		Summary:          p.Summarize(ds),
		RegionStats:      p.RegionStats(ds),
		RegionStateMeans: p.RegionStateMeans(ds),
		Correlation:      corr,
		StateRanking:     p.StateRanking(ds),
		LockdownImpact:   impact,
	}, nil
}
