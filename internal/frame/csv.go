package frame

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row and one line per row.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range f.Rows {
		if err := cw.Write(f.Strings(i)); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
