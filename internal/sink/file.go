package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"elexon/internal/frame"
)

// FileSink writes <dir>/<table>.csv or <dir>/<table>.json.
type FileSink struct {
	dir    string
	format string
}

func NewFileSink(dir, format string) (*FileSink, error) {
	if dir == "" {
		dir = "."
	}
	if format != KindCSV && format != KindJSON {
		return nil, fmt.Errorf("unsupported file format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &FileSink{dir: dir, format: format}, nil
}

// Path returns where the table of name is written.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.dir, TableName(name)+"."+s.format)
}

func (s *FileSink) Write(_ context.Context, name string, f *frame.Frame) error {
	file, err := os.Create(s.Path(name))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if s.format == KindCSV {
		return f.WriteCSV(file)
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(f.Records())
}

func (s *FileSink) Close() error {
	return nil
}
