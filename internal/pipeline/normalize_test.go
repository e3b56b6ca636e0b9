package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sourceHeader = []string{
	"Region", " Date", " Frequency", " Estimated Unemployment Rate (%)",
	" Estimated Employed", " Estimated Labour Participation Rate (%)",
	"Region.1", "longitude", "latitude",
}

func rawRow(state, date, rate, region string) []string {
	return []string{state, date, " M", rate, "11999139", "42.1", region, "15.9129", "79.74"}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"dash day-first", " 31-05-2019", time.Date(2019, 5, 31, 0, 0, 0, 0, time.UTC), true},
		{"slash day-first", "01/04/2020", time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"single digits", "1-4-2020", time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"dotted", "15.06.2020", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"iso", "2020-06-15", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"two digit year is ambiguous", "05-06-19", time.Time{}, false},
		{"month first rejected", "05-31-2019", time.Time{}, false},
		{"day out of range", "30-02-2020", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDate(tc.input)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}
}

func TestMonthName(t *testing.T) {
	for n := 1; n <= 12; n++ {
		name, err := MonthName(n)
		require.NoError(t, err)
		assert.Equal(t, time.Month(n).String()[:3], name)
	}

	for _, n := range []int{0, 13, -1} {
		_, err := MonthName(n)
		assert.Error(t, err, "month %d", n)
	}
}

func TestCheckHeader(t *testing.T) {
	t.Run("source header accepted", func(t *testing.T) {
		assert.NoError(t, CheckHeader(sourceHeader))
	})

	t.Run("wrong column count", func(t *testing.T) {
		err := CheckHeader(sourceHeader[:8])
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("swapped columns", func(t *testing.T) {
		swapped := append([]string(nil), sourceHeader...)
		swapped[3], swapped[4] = swapped[4], swapped[3]

		err := CheckHeader(swapped)

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, KindSchema, pe.Kind)
		assert.Equal(t, StageHeader, pe.Stage)
		assert.Equal(t, ColUnemploymentRate, pe.Column)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("valid rows", func(t *testing.T) {
		rows := [][]string{
			rawRow("Andhra Pradesh", " 31-01-2020", " 5.48", "South"),
			rawRow("Assam", " 30-04-2020", "11.06", "Northeast"),
			rawRow("Bihar", " 31-07-2020", "12.8", "East"),
			rawRow("Kerala", " 31-03-2020", "8.95", "South"),
		}

		ds, err := Normalize(rows)

		require.NoError(t, err)
		require.Len(t, ds.Records, 4)

		r := ds.Records[1]
		assert.Equal(t, "Assam", r.State)
		assert.Equal(t, "Northeast", r.Region)
		assert.Equal(t, "M", r.Frequency)
		assert.Equal(t, 11.06, r.UnemploymentRate)
		assert.Equal(t, 11999139.0, r.EmployedCount)
		assert.Equal(t, 42.1, r.LabourParticipationRate)
		assert.Equal(t, 15.9129, r.Longitude)
		assert.Equal(t, 79.74, r.Latitude)
		assert.Equal(t, 4, r.MonthNumber)
		assert.Equal(t, "Apr", r.MonthName)

		assert.Equal(t, []string{"South", "Northeast", "East"}, ds.Regions.Values())
		assert.Equal(t, []string{"M"}, ds.Frequencies.Values())
		assert.True(t, ds.Regions.Contains("East"))
		assert.False(t, ds.Regions.Contains("West"))
		assert.Equal(t, 1, ds.Regions.Code("Northeast"))
	})

	t.Run("month fields follow date", func(t *testing.T) {
		var rows [][]string
		for m := 1; m <= 12; m++ {
			d := time.Date(2020, time.Month(m), 10, 0, 0, 0, 0, time.UTC)
			rows = append(rows, rawRow("Goa", d.Format("02-01-2006"), "3.1", "West"))
		}

		ds, err := Normalize(rows)

		require.NoError(t, err)
		for _, r := range ds.Records {
			assert.Equal(t, int(r.Date.Month()), r.MonthNumber)
			want, _ := MonthName(r.MonthNumber)
			assert.Equal(t, want, r.MonthName)
		}
	})

	t.Run("short row is a schema error", func(t *testing.T) {
		rows := [][]string{
			rawRow("Goa", "31-01-2020", "3.1", "West"),
			{"Goa", "31-01-2020"},
		}

		ds, err := Normalize(rows)

		assert.Nil(t, ds)
		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrSchema)
		assert.Equal(t, 1, pe.Row)
	})

	t.Run("malformed date is a parse error", func(t *testing.T) {
		rows := [][]string{rawRow("Goa", "2020/31/01", "3.1", "West")}

		_, err := Normalize(rows)

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrParse)
		assert.Equal(t, 0, pe.Row)
		assert.Equal(t, ColDate, pe.Column)
		assert.Equal(t, "2020/31/01", pe.Value)
	})

	t.Run("non numeric rate is a parse error", func(t *testing.T) {
		rows := [][]string{rawRow("Goa", "31-01-2020", "n/a", "West")}

		_, err := Normalize(rows)

		var pe *Error
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrParse)
		assert.Equal(t, ColUnemploymentRate, pe.Column)
	})

	t.Run("blank region is a domain error", func(t *testing.T) {
		rows := [][]string{rawRow("Goa", "31-01-2020", "3.1", "  ")}

		_, err := Normalize(rows)

		assert.ErrorIs(t, err, ErrDomain)
		assert.False(t, errors.Is(err, ErrParse))
	})

	t.Run("empty input", func(t *testing.T) {
		ds, err := Normalize(nil)

		require.NoError(t, err)
		assert.Empty(t, ds.Records)
		assert.Equal(t, 0, ds.Regions.Len())
	})
}

func TestError_Message(t *testing.T) {
	err := newError(KindParse, StageNormalize, 3, ColDate, "x", errMalformedDate)

	assert.Equal(t, `[PARSE] normalize row 3 column "date" value "x": date is not in day-first form`, err.Error())
	assert.ErrorIs(t, err, errMalformedDate)
	assert.ErrorIs(t, err, ErrParse)
}
