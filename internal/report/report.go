// Package report renders derived tables for terminals and spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/godilite/labor-insights/internal/pipeline"
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "text" or "csv".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

type Options struct {
	format    Format
	precision int
}

type Option func(*Options)

func WithFormat(f Format) Option {
	return func(o *Options) {
		o.format = f
	}
}

// WithPrecision fixes the decimals printed for floats. -1 prints the
// shortest exact representation.
func WithPrecision(p int) Option {
	return func(o *Options) {
		o.precision = p
	}
}

// Writer renders tables to an io.Writer.
type Writer struct {
	w    io.Writer
	opts Options
}

func NewWriter(w io.Writer, opts ...Option) *Writer {
	options := Options{format: FormatText, precision: -1}
	for _, opt := range opts {
		opt(&options)
	}
	return &Writer{w: w, opts: options}
}

// Write renders tables in order. Text output separates tables with a blank
// line; CSV output prefixes each table with a row holding its name.
func (rw *Writer) Write(tables []pipeline.Table) error {
	if rw.opts.format == FormatCSV {
		return rw.writeCSV(tables)
	}
	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(rw.w, "\n"); err != nil {
				return err
			}
		}
		if err := rw.writeText(t); err != nil {
			return fmt.Errorf("render %s: %w", t.Name, err)
		}
	}
	return nil
}

func (rw *Writer) writeText(t pipeline.Table) error {
	if _, err := fmt.Fprintf(rw.w, "== %s ==\n", t.Name); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(rw.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, strings.Join(t.Columns, "\t")+"\t"); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(rw.cells(row), "\t")+"\t"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (rw *Writer) writeCSV(tables []pipeline.Table) error {
	cw := csv.NewWriter(rw.w)
	for _, t := range tables {
		if err := cw.Write([]string{t.Name}); err != nil {
			return err
		}
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
		for _, row := range t.Rows {
			if err := cw.Write(rw.cells(row)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (rw *Writer) cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = rw.cell(v)
	}
	return out
}

func (rw *Writer) cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', rw.opts.precision, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
