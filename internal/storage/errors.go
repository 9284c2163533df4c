package storage

import (
	"errors"
	"fmt"
)

// ErrMissingMetricsField is matched by MissingMetricsFieldError via errors.Is.
var ErrMissingMetricsField = errors.New("no Metrics field")

// MalformedInputError reports a document that is not valid JSON or does not
// have the fields a reader requires.
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// MissingMetricsFieldError reports a perfmon document without a Metrics array.
type MissingMetricsFieldError struct {
	Path string
}

func (e *MissingMetricsFieldError) Error() string {
	return fmt.Sprintf("no metrics were found in %s", e.Path)
}

func (e *MissingMetricsFieldError) Is(target error) bool {
	return target == ErrMissingMetricsField
}
