// Package registry turns an OpenAPI description of the BMRS Insights API into a
// catalogue of datasets and answers lookups against it.
//
// A Registry is built once with Build or Load and is read-only afterwards, so it
// can be shared between goroutines without locking.
package registry

import (
	"fmt"
	"slices"

	"elexon/internal/errs"
)

// ListCommand is the entry point users are pointed to when an alias is unknown.
const ListCommand = "elexon datasets"

type Registry struct {
	datasets    []Dataset
	byOperation map[string]int
}

// AliasNotFoundError is returned when an alias matches no operation, name or code.
type AliasNotFoundError struct {
	Alias string
}

func (e *AliasNotFoundError) Error() string {
	return fmt.Sprintf("alias %q not found, run %q to list available datasets", e.Alias, ListCommand)
}

func (e *AliasNotFoundError) Unwrap() error {
	return errs.ErrAliasNotFound
}

// Resolve maps an operation id, name or code to its operation id. The first
// record in catalogue order wins.
func (r *Registry) Resolve(alias string) (string, error) {
	for _, ds := range r.datasets {
		if ds.Operation == alias || ds.Name == alias || ds.Code == alias {
			return ds.Operation, nil
		}
	}
	return "", &AliasNotFoundError{Alias: alias}
}

// Lookup resolves alias and returns a copy of its record.
func (r *Registry) Lookup(alias string) (Dataset, error) {
	operation, err := r.Resolve(alias)
	if err != nil {
		return Dataset{}, err
	}
	ds, _ := r.Dataset(operation)
	return ds, nil
}

// Dataset returns the record registered under an operation id.
func (r *Registry) Dataset(operation string) (Dataset, bool) {
	i, ok := r.byOperation[operation]
	if !ok {
		return Dataset{}, false
	}
	return r.datasets[i].clone(), true
}

// Help returns the description shown for an alias.
func (r *Registry) Help(alias string) (string, error) {
	ds, err := r.Lookup(alias)
	if err != nil {
		return "", err
	}
	return ds.Description, nil
}

// Datasets returns every record in catalogue order.
func (r *Registry) Datasets() []Dataset {
	out := make([]Dataset, len(r.datasets))
	for i, ds := range r.datasets {
		out[i] = ds.clone()
	}
	return out
}

// Filter returns the records of one category, all of them when category is empty.
func (r *Registry) Filter(category string) []Dataset {
	if category == "" {
		return r.Datasets()
	}
	var out []Dataset
	for _, ds := range r.datasets {
		if ds.Category == category {
			out = append(out, ds.clone())
		}
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func (r *Registry) Categories() []string {
	var out []string
	for _, ds := range r.datasets {
		if !slices.Contains(out, ds.Category) {
			out = append(out, ds.Category)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.datasets)
}

func (d Dataset) clone() Dataset {
	d.RequiredCols = slices.Clone(d.RequiredCols)
	d.OptionalCols = slices.Clone(d.OptionalCols)
	d.DatetimeCols = slices.Clone(d.DatetimeCols)
	if d.MaxDays != nil {
		days := *d.MaxDays
		d.MaxDays = &days
	}
	return d
}
