package grpc

import (
	"fmt"

	"github.com/godilite/labor-insights/internal/pipeline"
	"google.golang.org/protobuf/types/known/structpb"
)

// TableToStruct encodes a table as {name, columns, rows}, where each row is
// an object keyed by column name.
func TableToStruct(t pipeline.Table) (*structpb.Struct, error) {
	columns := make([]*structpb.Value, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = structpb.NewStringValue(c)
	}

	rows := make([]*structpb.Value, len(t.Rows))
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return nil, fmt.Errorf("table %s row %d: %d cells for %d columns", t.Name, i, len(r), len(t.Columns))
		}
		fields := make(map[string]*structpb.Value, len(r))
		for j, cell := range r {
			v, err := structpb.NewValue(cell)
			if err != nil {
				return nil, fmt.Errorf("table %s row %d column %s: %w", t.Name, i, t.Columns[j], err)
			}
			fields[t.Columns[j]] = v
		}
		rows[i] = structpb.NewStructValue(&structpb.Struct{Fields: fields})
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":    structpb.NewStringValue(t.Name),
		"columns": structpb.NewListValue(&structpb.ListValue{Values: columns}),
		"rows":    structpb.NewListValue(&structpb.ListValue{Values: rows}),
	}}, nil
}

// cellValue keeps numbers as float64. AsInterface would turn NaN and ±Inf
// into strings.
func cellValue(v *structpb.Value) any {
	if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
		return n.NumberValue
	}
	return v.AsInterface()
}

// TableFromStruct decodes a response produced by TableToStruct. Numbers come
// back as float64.
func TableFromStruct(s *structpb.Struct) (pipeline.Table, error) {
	fields := s.GetFields()
	t := pipeline.Table{Name: fields["name"].GetStringValue()}

	cols := fields["columns"].GetListValue()
	if cols == nil {
		return pipeline.Table{}, fmt.Errorf("table %q: missing columns", t.Name)
	}
	for _, c := range cols.GetValues() {
		t.Columns = append(t.Columns, c.GetStringValue())
	}

	for i, rv := range fields["rows"].GetListValue().GetValues() {
		row := rv.GetStructValue()
		if row == nil {
			return pipeline.Table{}, fmt.Errorf("table %q row %d: not an object", t.Name, i)
		}
		cells := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			v, ok := row.GetFields()[c]
			if !ok {
				return pipeline.Table{}, fmt.Errorf("table %q row %d: missing column %s", t.Name, i, c)
			}
			cells[j] = cellValue(v)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
