package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindParse            Kind = "PARSE"
	KindDomain           Kind = "DOMAIN"
	KindInsufficientData Kind = "INSUFFICIENT_DATA"
	KindSchema           Kind = "SCHEMA"
)

var (
	ErrParse            = errors.New("parse error")
	ErrDomain           = errors.New("domain error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrSchema           = errors.New("schema error")
)

// Stage names reported on errors.
const (
	StageHeader    = "header"
	StageNormalize = "normalize"
	StageCorrelate = "correlate"
	StageCompare   = "compare"
)

// Error is the structured failure returned by every pipeline stage. Row is the
// zero-based data row index, or -1 when the failure is not tied to one row.
type Error struct {
	Kind   Kind
	Stage  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Stage)
	if e.Row >= 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindParse:
		return ErrParse
	case KindDomain:
		return ErrDomain
	case KindInsufficientData:
		return ErrInsufficientData
	default:
		return ErrSchema
	}
}

func newError(kind Kind, stage string, row int, column, value string, cause error) *Error {
	return &Error{
		Kind:   kind,
		Stage:  stage,
		Row:    row,
		Column: column,
		Value:  value,
		Err:    cause,
	}
}
