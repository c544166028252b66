// Package params holds the query parameters of a download as typed values.
//
// A Bag maps parameter names to a Value, which is either one Scalar or a list
// of Scalars. Lists render as repeated query keys.
package params

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"elexon/internal/errs"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Scalar is a single parameter value with an explicit kind.
type Scalar struct {
	kind Kind
	s    string
	n    float64
	b    bool
	t    time.Time
}

func String(s string) Scalar {
	return Scalar{kind: KindString, s: s}
}

func Number(n float64) Scalar {
	return Scalar{kind: KindNumber, n: n}
}

func Bool(b bool) Scalar {
	return Scalar{kind: KindBool, b: b}
}

func Time(t time.Time) Scalar {
	return Scalar{kind: KindTime, t: t}
}

func (s Scalar) Kind() Kind {
	return s.kind
}

func (s Scalar) AsTime() (time.Time, bool) {
	if s.kind != KindTime {
		return time.Time{}, false
	}
	return s.t, true
}

// Text renders the scalar the way it is sent on the wire.
func (s Scalar) Text() string {
	switch s.kind {
	case KindNumber:
		return strconv.FormatFloat(s.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindTime:
		return s.t.UTC().Format(time.RFC3339)
	default:
		return s.s
	}
}

// Interface returns the scalar as a plain Go value.
func (s Scalar) Interface() any {
	switch s.kind {
	case KindNumber:
		return s.n
	case KindBool:
		return s.b
	case KindTime:
		return s.t
	default:
		return s.s
	}
}

// Value is a single scalar or a list of scalars.
type Value struct {
	items []Scalar
	list  bool
}

func Single(s Scalar) Value {
	return Value{items: []Scalar{s}}
}

func List(items ...Scalar) Value {
	return Value{items: slices.Clone(items), list: true}
}

// Strings builds a list value of string scalars.
func Strings(items ...string) Value {
	v := Value{items: make([]Scalar, len(items)), list: true}
	for i, s := range items {
		v.items[i] = String(s)
	}
	return v
}

func (v Value) IsList() bool {
	return v.list
}

func (v Value) Len() int {
	return len(v.items)
}

func (v Value) Items() []Scalar {
	return slices.Clone(v.items)
}

// First returns the first scalar, the zero Scalar when the value is empty.
func (v Value) First() Scalar {
	if len(v.items) == 0 {
		return Scalar{}
	}
	return v.items[0]
}

// Texts renders every scalar.
func (v Value) Texts() []string {
	out := make([]string, len(v.items))
	for i, s := range v.items {
		out[i] = s.Text()
	}
	return out
}

func (v Value) Interface() any {
	if !v.list {
		return v.First().Interface()
	}
	out := make([]any, len(v.items))
	for i, s := range v.items {
		out[i] = s.Interface()
	}
	return out
}

// Bag is a set of named parameter values. The zero Bag is not usable, use NewBag.
type Bag struct {
	values map[string]Value
}

func NewBag() *Bag {
	return &Bag{values: make(map[string]Value)}
}

func (b *Bag) Set(name string, v Value) *Bag {
	b.values[name] = v
	return b
}

func (b *Bag) Get(name string) (Value, bool) {
	v, ok := b.values[name]
	return v, ok
}

func (b *Bag) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

func (b *Bag) Delete(name string) {
	delete(b.values, name)
}

// Rename moves a value to a new name. It is a no-op when from is absent.
func (b *Bag) Rename(from, to string) {
	v, ok := b.values[from]
	if !ok {
		return
	}
	delete(b.values, from)
	b.values[to] = v
}

// Keys returns the parameter names sorted.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (b *Bag) Len() int {
	return len(b.values)
}

func (b *Bag) Clone() *Bag {
	c := NewBag()
	for k, v := range b.values {
		c.values[k] = v
	}
	return c
}

// Query renders the bag as URL query values. Lists become repeated keys.
func (b *Bag) Query() url.Values {
	q := make(url.Values, len(b.values))
	for k, v := range b.values {
		q[k] = v.Texts()
	}
	return q
}

// Map returns the bag as plain values, for logging and JSON.
func (b *Bag) Map() map[string]any {
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v.Interface()
	}
	return out
}

// FromAny converts a decoded JSON value into a Value. Strings stay strings:
// date columns are parsed later, when the planner knows which columns they are.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case []any:
		items := make([]Scalar, 0, len(t))
		for _, e := range t {
			s, err := scalarFromAny(e)
			if err != nil {
				return Value{}, err
			}
			items = append(items, s)
		}
		return Value{items: items, list: true}, nil
	case []string:
		return Strings(t...), nil
	default:
		s, err := scalarFromAny(v)
		if err != nil {
			return Value{}, err
		}
		return Single(s), nil
	}
}

func scalarFromAny(v any) (Scalar, error) {
	switch t := v.(type) {
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Scalar{}, fmt.Errorf("%w: %q is not a number", errs.ErrInvalidParam, t)
		}
		return Number(n), nil
	case time.Time:
		return Time(t), nil
	default:
		return Scalar{}, fmt.Errorf("%w: unsupported value type %T", errs.ErrInvalidParam, v)
	}
}

// FromMap builds a bag from decoded JSON, as received by the gateway.
func FromMap(m map[string]any) (*Bag, error) {
	b := NewBag()
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		b.Set(k, v)
	}
	return b, nil
}

// ParsePairs builds a bag from "name=value" pairs. A repeated name becomes a list.
func ParsePairs(pairs []string) (*Bag, error) {
	b := NewBag()
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", errs.ErrInvalidParam, pair)
		}

		existing, seen := b.values[name]
		if !seen {
			b.values[name] = Single(String(value))
			continue
		}
		items := append(slices.Clone(existing.items), String(value))
		b.values[name] = Value{items: items, list: true}
	}
	return b, nil
}
