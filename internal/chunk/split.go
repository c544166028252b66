package chunk

import (
	"fmt"

	"elexon/internal/errs"
	"elexon/internal/params"
)

// MaxListLen is the longest identifier list the API accepts in one request.
const MaxListLen = 10

// SplitList cuts items into consecutive sub-lists of at most max elements.
func SplitList[T any](items []T, max int) [][]T {
	if max <= 0 || len(items) <= max {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+max-1)/max)
	for start := 0; start < len(items); start += max {
		end := min(start+max, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

// SplitLists splits bag on its list parameter longer than max, one bag per
// sub-list. Only one oversized list is supported per request. The column named
// by skip is ignored, it is already being chunked on.
func SplitLists(bag *params.Bag, max int, skip string) ([]*params.Bag, string, error) {
	var oversized []string
	for _, key := range bag.Keys() {
		if key == skip {
			continue
		}
		v, _ := bag.Get(key)
		if v.IsList() && v.Len() > max {
			oversized = append(oversized, key)
		}
	}

	switch len(oversized) {
	case 0:
		return []*params.Bag{bag}, "", nil
	case 1:
	default:
		return nil, "", fmt.Errorf("%w: lists %v all exceed %d elements, split one at a time", errs.ErrConflictingSplit, oversized, max)
	}

	key := oversized[0]
	v, _ := bag.Get(key)
	parts := SplitList(v.Items(), max)
	out := make([]*params.Bag, len(parts))
	for i, part := range parts {
		out[i] = bag.Clone().Set(key, params.List(part...))
	}
	return out, key, nil
}
