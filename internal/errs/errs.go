// Package errs holds the sentinel errors shared by the registry, planner and
// retrieval packages, and classifies any error returned by a download into the
// handling class callers act on (fail fast, retry exhausted, upstream, shape).
package errs

import (
	"context"
	"errors"
)

// Class represents the classification of errors for handling purposes
type Class int

const (
	ClassUnknown Class = iota
	// ClassInvalid is a caller or configuration error detected before any network call
	ClassInvalid
	// ClassNotFound is an alias that matches no dataset
	ClassNotFound
	// ClassTransient is a transient upstream failure that survived every retry
	ClassTransient
	// ClassUpstream is a permanent upstream failure, never retried
	ClassUpstream
	// ClassShape is a response that could not be reshaped into the requested form
	ClassShape
	// ClassCanceled is a download stopped by its context
	ClassCanceled
)

func (c Class) String() string {
	switch c {
	case ClassInvalid:
		return "invalid"
	case ClassNotFound:
		return "not_found"
	case ClassTransient:
		return "transient"
	case ClassUpstream:
		return "upstream"
	case ClassShape:
		return "shape"
	case ClassCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidSpec = errors.New("invalid specification")

	// Configuration errors
	ErrAliasNotFound         = errors.New("alias not found")
	ErrMissingParams         = errors.New("missing required parameters")
	ErrUnknownParams         = errors.New("unknown parameters")
	ErrAmbiguousChunkColumns = errors.New("cannot determine chunk columns")
	ErrInvalidChunkValue     = errors.New("invalid chunk value")
	ErrConflictingSplit      = errors.New("conflicting request split")
	ErrUnsupportedFormat     = errors.New("unsupported output format")
	ErrInvalidParam          = errors.New("invalid parameter")

	// Upstream errors
	ErrHTTPStatus       = errors.New("http error status")
	ErrRetriesExhausted = errors.New("maximum retries exceeded")

	// Response shape errors
	ErrConversion = errors.New("conversion failed")
)

// Classify maps err onto its handling class.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassCanceled
	case errors.Is(err, ErrAliasNotFound):
		return ClassNotFound
	case errors.Is(err, ErrMissingParams),
		errors.Is(err, ErrUnknownParams),
		errors.Is(err, ErrAmbiguousChunkColumns),
		errors.Is(err, ErrInvalidChunkValue),
		errors.Is(err, ErrConflictingSplit),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrInvalidParam),
		errors.Is(err, ErrInvalidSpec):
		return ClassInvalid
	case errors.Is(err, ErrRetriesExhausted):
		return ClassTransient
	case errors.Is(err, ErrHTTPStatus):
		return ClassUpstream
	case errors.Is(err, ErrConversion):
		return ClassShape
	default:
		return ClassUnknown
	}
}

// IsInvalid reports whether err is a configuration error that must not be retried.
func IsInvalid(err error) bool {
	c := Classify(err)
	return c == ClassInvalid || c == ClassNotFound
}
