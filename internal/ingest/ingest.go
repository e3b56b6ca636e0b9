// Package ingest reads the raw labor-statistics table from CSV or XLSX files.
// Values are returned untyped; normalization belongs to the pipeline.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Table is a raw table: an optional header plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

type Options struct {
	hasHeader bool
	delimiter rune
	sheet     string
}

type Option func(*Options)

// WithHeader sets whether the first row is a header. Defaults to true.
func WithHeader(has bool) Option {
	return func(o *Options) { o.hasHeader = has }
}

// WithDelimiter sets the CSV field separator. Defaults to ','.
func WithDelimiter(r rune) Option {
	return func(o *Options) { o.delimiter = r }
}

// WithSheet picks the XLSX sheet. Defaults to the first sheet.
func WithSheet(name string) Option {
	return func(o *Options) { o.sheet = name }
}

func buildOptions(opts []Option) *Options {
	options := &Options{hasHeader: true, delimiter: ','}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// ReadFile dispatches on the file extension.
func ReadFile(path string, opts ...Option) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f, opts...)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadCSV reads delimited text. Rows may have any width; column counts are
// checked during normalization so the offending row can be reported.
func ReadCSV(r io.Reader, opts ...Option) (*Table, error) {
	options := buildOptions(opts)

	cr := csv.NewReader(r)
	cr.Comma = options.delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	return toTable(records, options), nil
}

// ReadXLSX reads one worksheet of an Excel workbook.
func ReadXLSX(path string, opts ...Option) (*Table, error) {
	options := buildOptions(opts)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := options.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toTable(rows, options), nil
}

func toTable(records [][]string, options *Options) *Table {
	t := &Table{}
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if options.hasHeader && t.Header == nil {
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
