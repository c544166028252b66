package chunk

import (
	"fmt"
	"strings"
	"time"

	"elexon/internal/errs"
	"elexon/internal/params"
)

// Range is a half-open window [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// DateRanges cuts [start, end) into consecutive windows of at most maxDays
// days. A nil or non-positive maxDays yields one window covering the range; an
// empty or inverted range yields none.
func DateRanges(start, end time.Time, maxDays *int) []Range {
	if !end.After(start) {
		return nil
	}
	if maxDays == nil || *maxDays <= 0 {
		return []Range{{Start: start, End: end}}
	}

	var ranges []Range
	for cur := start; cur.Before(end); {
		next := cur.AddDate(0, 0, *maxDays)
		if next.After(end) {
			next = end
		}
		ranges = append(ranges, Range{Start: cur, End: next})
		cur = next
	}
	return ranges
}

var layouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// InvalidValueError is returned when a chunk column holds something that is not
// a date or timestamp.
type InvalidValueError struct {
	Column string
	Value  string
}

func (e *InvalidValueError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("chunk column %s has no value", e.Column)
	}
	return fmt.Sprintf("chunk column %s: %q is not a date or timestamp", e.Column, e.Value)
}

func (e *InvalidValueError) Unwrap() error {
	return errs.ErrInvalidChunkValue
}

// ParseTime reads a chunk column value. Values without a zone are taken as UTC.
func ParseTime(column string, s params.Scalar) (time.Time, error) {
	if t, ok := s.AsTime(); ok {
		return t, nil
	}
	if s.Kind() != params.KindString {
		return time.Time{}, &InvalidValueError{Column: column, Value: s.Text()}
	}
	text := strings.TrimSpace(s.Text())
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidValueError{Column: column, Value: text}
}

// FormatFor renders t for a column: an RFC 3339 UTC timestamp when the column
// name contains "time", a plain date otherwise.
func FormatFor(column string, t time.Time) string {
	if strings.Contains(strings.ToLower(column), "time") {
		return t.UTC().Format(time.RFC3339)
	}
	return t.Format("2006-01-02")
}
