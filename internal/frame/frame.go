// Package frame reshapes decoded JSON records into a table.
package frame

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"elexon/internal/errs"
)

// Frame is a table of records. Columns is the union of record keys in the
// order they are first seen.
type Frame struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}

// ConversionError is returned when a payload cannot be turned into a table.
type ConversionError struct {
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert response to a table: %v; use format=json to get the raw data", e.Cause)
}

func (e *ConversionError) Unwrap() []error {
	return []error{errs.ErrConversion, e.Cause}
}

// DecodeJSON decodes a response body. Numbers are kept as json.Number so large
// identifiers survive.
func DecodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// ExtractData returns the value under "data" when v is an object holding one.
func ExtractData(v any) any {
	if m, ok := v.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			return data
		}
	}
	return v
}

// FromRecords builds a frame from a list of objects or a single object.
func FromRecords(v any) (*Frame, error) {
	var records []any
	switch t := v.(type) {
	case nil:
		records = nil
	case []any:
		records = t
	case []map[string]any:
		records = make([]any, len(t))
		for i, r := range t {
			records[i] = r
		}
	case map[string]any:
		records = []any{t}
	default:
		return nil, &ConversionError{Cause: fmt.Errorf("expected records, got %T", v)}
	}

	f := &Frame{Columns: []string{}, Rows: make([]map[string]any, 0, len(records))}
	seen := make(map[string]bool)

	for i, rec := range records {
		row, ok := rec.(map[string]any)
		if !ok {
			return nil, &ConversionError{Cause: fmt.Errorf("record %d is %T, not an object", i, rec)}
		}
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				f.Columns = append(f.Columns, k)
			}
		}
		f.Rows = append(f.Rows, row)
	}
	f.RowCount = len(f.Rows)
	return f, nil
}

// FromBody decodes a response body, takes its data field and builds a frame.
func FromBody(body []byte) (*Frame, error) {
	v, err := DecodeJSON(body)
	if err != nil {
		return nil, &ConversionError{Cause: err}
	}
	return FromRecords(ExtractData(v))
}

// Records returns the rows as a plain list, the shape of the json format.
func (f *Frame) Records() []any {
	out := make([]any, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r
	}
	return out
}

// CellString renders one cell: empty for nil, JSON for nested values.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool, float64, float32, int, int64:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Strings returns one row as cell strings in column order.
func (f *Frame) Strings(row int) []string {
	out := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = CellString(f.Rows[row][c])
	}
	return out
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame[%d rows x %d columns: %s]", f.RowCount, len(f.Columns), strings.Join(f.Columns, ", "))
}
