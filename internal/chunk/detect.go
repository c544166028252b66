// Package chunk plans how one download is split into sequential API requests:
// by date window when the query spans more days than the endpoint serves at
// once, by element when a date column holds a list, and by sub-list when an
// identifier list is longer than the API accepts.
package chunk

import (
	"fmt"
	"strings"

	"elexon/internal/errs"
)

type Mode int

const (
	ModeNone Mode = iota
	// ModeRange splits a from/to pair into windows of at most MaxDays.
	ModeRange
	// ModeEnumerate issues one request per element of a list-valued date column.
	ModeEnumerate
)

func (m Mode) String() string {
	switch m {
	case ModeRange:
		return "range"
	case ModeEnumerate:
		return "enumerate"
	default:
		return "none"
	}
}

// Columns names the parameters a download is chunked on. From and To are set
// in range mode, Column in enumeration mode.
type Columns struct {
	Mode   Mode
	From   string
	To     string
	Column string
}

// AmbiguousColumnsError lists every candidate when the chunk columns cannot be
// told apart from the parameter names alone.
type AmbiguousColumnsError struct {
	From []string
	To   []string
	Date []string
	Time []string
}

func (e *AmbiguousColumnsError) Error() string {
	return fmt.Sprintf("cannot determine chunk columns (from: %v, to: %v, date: %v, time: %v), pass the columns explicitly with date_chunk_cols",
		e.From, e.To, e.Date, e.Time)
}

func (e *AmbiguousColumnsError) Unwrap() error {
	return errs.ErrAmbiguousChunkColumns
}

// DetectColumns picks the chunk columns. Explicit columns are used verbatim:
// one name enumerates, two names form a from/to range. Otherwise keys are
// matched case-insensitively on their from, to, date and time suffixes.
func DetectColumns(keys []string, explicit []string) (Columns, error) {
	switch len(explicit) {
	case 0:
	case 1:
		return Columns{Mode: ModeEnumerate, Column: explicit[0]}, nil
	case 2:
		return Columns{Mode: ModeRange, From: explicit[0], To: explicit[1]}, nil
	default:
		return Columns{}, fmt.Errorf("%w: date_chunk_cols takes one or two names, got %d", errs.ErrInvalidParam, len(explicit))
	}

	var from, to, date, tm []string
	for _, key := range keys {
		lower := strings.ToLower(key)
		switch {
		case strings.HasSuffix(lower, "from"):
			from = append(from, key)
		case strings.HasSuffix(lower, "to"):
			to = append(to, key)
		case strings.HasSuffix(lower, "date"):
			date = append(date, key)
		case strings.HasSuffix(lower, "time"):
			tm = append(tm, key)
		}
	}

	switch {
	case len(from)+len(to)+len(date)+len(tm) == 0:
		return Columns{Mode: ModeNone}, nil
	case len(from) == 1 && len(to) == 1:
		return Columns{Mode: ModeRange, From: from[0], To: to[0]}, nil
	case len(from) == 0 && len(to) == 0 && len(date) == 1 && len(tm) == 0:
		return Columns{Mode: ModeEnumerate, Column: date[0]}, nil
	case len(from) == 0 && len(to) == 0 && len(tm) == 1 && len(date) == 0:
		return Columns{Mode: ModeEnumerate, Column: tm[0]}, nil
	default:
		return Columns{}, &AmbiguousColumnsError{From: from, To: to, Date: date, Time: tm}
	}
}
