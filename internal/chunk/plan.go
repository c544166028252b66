package chunk

import (
	"fmt"
	"time"

	"elexon/internal/errs"
	"elexon/internal/params"
)

type Options struct {
	// ExplicitCols overrides column detection, one or two names.
	ExplicitCols []string
	// MaxDays is the widest window the endpoint serves, nil when unconstrained.
	MaxDays *int
	// MaxListLen bounds list parameters, MaxListLen when zero.
	MaxListLen int
}

// Plan is the ordered list of requests one download is made of.
type Plan struct {
	Columns   Columns
	SplitList string
	Requests  []*params.Bag
}

// Split reports whether results of several requests have to be concatenated.
func (p *Plan) Split() bool {
	return len(p.Requests) > 1
}

// NewPlan decides how bag is split. Date chunking and list splitting are
// exclusive: a request needing both fails with ErrConflictingSplit.
func NewPlan(bag *params.Bag, opts Options) (*Plan, error) {
	if opts.MaxListLen <= 0 {
		opts.MaxListLen = MaxListLen
	}

	cols, err := DetectColumns(bag.Keys(), opts.ExplicitCols)
	if err != nil {
		return nil, err
	}

	var requests []*params.Bag
	switch cols.Mode {
	case ModeRange:
		requests, err = planRange(bag, cols, opts.MaxDays)
	case ModeEnumerate:
		requests, err = planEnumerate(bag, cols)
	default:
		requests = []*params.Bag{bag}
	}
	if err != nil {
		return nil, err
	}

	plan := &Plan{Columns: cols, Requests: requests}

	skip := cols.Column
	if len(requests) > 1 {
		for _, key := range bag.Keys() {
			v, _ := bag.Get(key)
			if key != skip && v.IsList() && v.Len() > opts.MaxListLen {
				return nil, fmt.Errorf("%w: %s is chunked by date and list %s exceeds %d elements, narrow one of them",
					errs.ErrConflictingSplit, describe(cols), key, opts.MaxListLen)
			}
		}
		return plan, nil
	}

	split, key, err := SplitLists(requests[0], opts.MaxListLen, skip)
	if err != nil {
		return nil, err
	}
	plan.Requests = split
	plan.SplitList = key
	return plan, nil
}

func planRange(bag *params.Bag, cols Columns, maxDays *int) ([]*params.Bag, error) {
	if maxDays == nil {
		return []*params.Bag{bag}, nil
	}

	start, err := singleTime(bag, cols.From)
	if err != nil {
		return nil, err
	}
	end, err := singleTime(bag, cols.To)
	if err != nil {
		return nil, err
	}

	ranges := DateRanges(start, end, maxDays)
	if len(ranges) <= 1 {
		return []*params.Bag{bag}, nil
	}

	out := make([]*params.Bag, len(ranges))
	for i, r := range ranges {
		out[i] = bag.Clone().
			Set(cols.From, params.Single(params.String(FormatFor(cols.From, r.Start)))).
			Set(cols.To, params.Single(params.String(FormatFor(cols.To, r.End))))
	}
	return out, nil
}

func planEnumerate(bag *params.Bag, cols Columns) ([]*params.Bag, error) {
	v, ok := bag.Get(cols.Column)
	if !ok {
		return nil, &InvalidValueError{Column: cols.Column}
	}
	if !v.IsList() {
		return []*params.Bag{bag}, nil
	}

	out := make([]*params.Bag, 0, v.Len())
	for _, item := range v.Items() {
		t, err := ParseTime(cols.Column, item)
		if err != nil {
			return nil, err
		}
		out = append(out, bag.Clone().Set(cols.Column, params.Single(params.String(FormatFor(cols.Column, t)))))
	}
	if len(out) == 0 {
		return nil, &InvalidValueError{Column: cols.Column}
	}
	return out, nil
}

func singleTime(bag *params.Bag, column string) (time.Time, error) {
	v, ok := bag.Get(column)
	if !ok || v.Len() == 0 {
		return time.Time{}, &InvalidValueError{Column: column}
	}
	if v.Len() != 1 {
		return time.Time{}, &InvalidValueError{Column: column, Value: fmt.Sprint(v.Texts())}
	}
	return ParseTime(column, v.First())
}

func describe(c Columns) string {
	if c.Mode == ModeRange {
		return c.From + "/" + c.To
	}
	return c.Column
}
