package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnCount is the fixed width of a raw input row.
const ColumnCount = 9

// Canonical column names, in input order.
const (
	ColState                   = "state"
	ColDate                    = "date"
	ColFrequency               = "frequency"
	ColUnemploymentRate        = "unemploymentRate"
	ColEmployedCount           = "employedCount"
	ColLabourParticipationRate = "labourParticipationRate"
	ColRegion                  = "region"
	ColLongitude               = "longitude"
	ColLatitude                = "latitude"
)

// Columns lists the canonical names by input position.
var Columns = [ColumnCount]string{
	ColState,
	ColDate,
	ColFrequency,
	ColUnemploymentRate,
	ColEmployedCount,
	ColLabourParticipationRate,
	ColRegion,
	ColLongitude,
	ColLatitude,
}

// headerKeywords holds the lower-case words a source header must contain at each
// position. Positions 0 and 6 carry no check: the published file labels both
// the state and region columns "Region".
var headerKeywords = [ColumnCount][]string{
	{},
	{"date"},
	{"frequency"},
	{"unemployment"},
	{"employed"},
	{"participation"},
	{},
	{"long"},
	{"lat"},
}

var monthAbbr = [13]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Day-first layouts. Four-digit years only; "05-06-19" is rejected as ambiguous.
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006-1-2",
}

var (
	errMalformedDate = errors.New("date is not in day-first form")
	errMonthRange    = errors.New("month number outside [1,12]")
	errEmptyCategory = errors.New("empty categorical value")
	errColumnCount   = fmt.Errorf("expected %d columns", ColumnCount)
)

// ParseDate parses a day-first date such as "31-05-2019".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errMalformedDate
}

// MonthNumber returns the calendar month of t.
func MonthNumber(t time.Time) int {
	return int(t.Month())
}

// MonthName maps 1..12 to "Jan".."Dec".
func MonthName(n int) (string, error) {
	if n < 1 || n > 12 {
		return "", errMonthRange
	}
	return monthAbbr[n], nil
}

// CheckHeader validates the column count and order of a source header.
func CheckHeader(header []string) error {
	if len(header) != ColumnCount {
		return newError(KindSchema, StageHeader, -1, "", strconv.Itoa(len(header)), errColumnCount)
	}
	for i, name := range header {
		lower := strings.ToLower(name)
		for _, kw := range headerKeywords[i] {
			if !strings.Contains(lower, kw) {
				return newError(KindSchema, StageHeader, -1, Columns[i], strings.TrimSpace(name),
					fmt.Errorf("column %d must name %q", i, kw))
			}
		}
	}
	return nil
}

// Normalize converts raw rows into typed records. The first failing row aborts
// the whole run.
func Normalize(rows [][]string) (*Dataset, error) {
	ds := &Dataset{
		Records:     make([]Record, 0, len(rows)),
		Regions:     NewCategorySet(),
		Frequencies: NewCategorySet(),
	}
	for i, row := range rows {
		rec, err := normalizeRow(i, row)
		if err != nil {
			return nil, err
		}
		ds.Regions.add(rec.Region)
		ds.Frequencies.add(rec.Frequency)
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func normalizeRow(i int, row []string) (Record, error) {
	if len(row) != ColumnCount {
		return Record{}, newError(KindSchema, StageNormalize, i, "", strconv.Itoa(len(row)), errColumnCount)
	}

	var rec Record
	var err error

	for _, c := range []struct {
		col string
		dst *string
	}{
		{ColState, &rec.State},
		{ColFrequency, &rec.Frequency},
		{ColRegion, &rec.Region},
	} {
		v := strings.TrimSpace(row[columnIndex(c.col)])
		if v == "" {
			return Record{}, newError(KindDomain, StageNormalize, i, c.col, "", errEmptyCategory)
		}
		*c.dst = v
	}

	rawDate := strings.TrimSpace(row[1])
	if rec.Date, err = ParseDate(rawDate); err != nil {
		return Record{}, newError(KindParse, StageNormalize, i, ColDate, rawDate, err)
	}

	for _, c := range []struct {
		col string
		dst *float64
	}{
		{ColUnemploymentRate, &rec.UnemploymentRate},
		{ColEmployedCount, &rec.EmployedCount},
		{ColLabourParticipationRate, &rec.LabourParticipationRate},
		{ColLongitude, &rec.Longitude},
		{ColLatitude, &rec.Latitude},
	} {
		raw := strings.TrimSpace(row[columnIndex(c.col)])
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return Record{}, newError(KindParse, StageNormalize, i, c.col, raw, perr)
		}
		*c.dst = v
	}

	rec.MonthNumber = MonthNumber(rec.Date)
	if rec.MonthName, err = MonthName(rec.MonthNumber); err != nil {
		return Record{}, newError(KindDomain, StageNormalize, i, "monthNumber", strconv.Itoa(rec.MonthNumber), err)
	}
	return rec, nil
}

func columnIndex(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}
