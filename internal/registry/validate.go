package registry

import (
	"fmt"
	"slices"
	"strings"

	"elexon/internal/errs"
)

type MissingParamsError struct {
	Operation string
	Missing   []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("missing required parameters for %s: %s", e.Operation, strings.Join(e.Missing, ", "))
}

func (e *MissingParamsError) Unwrap() error {
	return errs.ErrMissingParams
}

type UnknownParamsError struct {
	Operation string
	Unknown   []string
	Allowed   []string
}

func (e *UnknownParamsError) Error() string {
	return fmt.Sprintf("unknown parameters for %s: %s (allowed: %s)",
		e.Operation, strings.Join(e.Unknown, ", "), strings.Join(e.Allowed, ", "))
}

func (e *UnknownParamsError) Unwrap() error {
	return errs.ErrUnknownParams
}

// ValidateParams checks supplied parameter names against a dataset. Missing
// required parameters are reported before unknown ones.
func ValidateParams(ds Dataset, keys []string) error {
	allowed := ds.AllowedCols()

	var missing []string
	for _, name := range ds.RequiredCols {
		if !slices.Contains(keys, name) {
			missing = append(missing, name)
		}
	}

	var unknown []string
	for _, key := range keys {
		if !slices.Contains(allowed, key) && !slices.Contains(unknown, key) {
			unknown = append(unknown, key)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return &MissingParamsError{Operation: ds.Operation, Missing: missing}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return &UnknownParamsError{Operation: ds.Operation, Unknown: unknown, Allowed: allowed}
	}
	return nil
}
