package pipeline

import "time"

// Record is one normalized monthly observation for a state.
type Record struct {
	Region                  string
	State                   string
	Date                    time.Time
	Frequency               string
	UnemploymentRate        float64
	EmployedCount           float64
	LabourParticipationRate float64
	Longitude               float64
	Latitude                float64
	MonthNumber             int
	MonthName               string
}

// Field enumerates the numeric columns of a Record.
type Field int

const (
	UnemploymentRate Field = iota
	EmployedCount
	LabourParticipationRate
	Longitude
	Latitude
	MonthNumberField
)

var fieldNames = [...]string{
	UnemploymentRate:        "unemploymentRate",
	EmployedCount:           "employedCount",
	LabourParticipationRate: "labourParticipationRate",
	Longitude:               "longitude",
	Latitude:                "latitude",
	MonthNumberField:        "monthNumber",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// Value reads the field from r.
func (f Field) Value(r Record) float64 {
	switch f {
	case UnemploymentRate:
		return r.UnemploymentRate
	case EmployedCount:
		return r.EmployedCount
	case LabourParticipationRate:
		return r.LabourParticipationRate
	case Longitude:
		return r.Longitude
	case Latitude:
		return r.Latitude
	case MonthNumberField:
		return float64(r.MonthNumber)
	}
	return 0
}

// LaborFields are the three labor metrics reported by the summary and group tables.
var LaborFields = []Field{UnemploymentRate, EmployedCount, LabourParticipationRate}

// DefaultCorrelationFields are the numeric fields of the correlation heat map.
var DefaultCorrelationFields = []Field{
	UnemploymentRate,
	EmployedCount,
	LabourParticipationRate,
	Longitude,
	Latitude,
	MonthNumberField,
}

// CategorySet is the closed set of values observed for a categorical column,
// kept in first-seen order.
type CategorySet struct {
	values []string
	index  map[string]int
}

func NewCategorySet(values ...string) *CategorySet {
	c := &CategorySet{index: make(map[string]int)}
	for _, v := range values {
		c.add(v)
	}
	return c
}

func (c *CategorySet) add(v string) int {
	if i, ok := c.index[v]; ok {
		return i
	}
	c.index[v] = len(c.values)
	c.values = append(c.values, v)
	return len(c.values) - 1
}

// Contains reports whether v was observed.
func (c *CategorySet) Contains(v string) bool {
	_, ok := c.index[v]
	return ok
}

// Code returns the ordinal of v, or -1 when v is not a member.
func (c *CategorySet) Code(v string) int {
	if i, ok := c.index[v]; ok {
		return i
	}
	return -1
}

// Values returns a copy of the members in first-seen order.
func (c *CategorySet) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

func (c *CategorySet) Len() int { return len(c.values) }

// Dataset is the output of normalization.
type Dataset struct {
	Records     []Record
	Regions     *CategorySet
	Frequencies *CategorySet
}
