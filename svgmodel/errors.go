package svgmodel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingName is wrapped by NamingError.
var ErrMissingName = errors.New("group has neither data-name nor id")

func formatPath(path []string) string { return "/" + strings.Join(path, "/") }

// DocumentParseError is returned when the source document
// is malformed or can't be converted to paths.
type DocumentParseError struct {
	Path []string // names of the enclosing groups
	Err  error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("svgmodel: invalid document at %s: %s", formatPath(e.Path), e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// NamingError is returned for a group element without
// data-name or id attribute.
type NamingError struct {
	Path  []string // names of the enclosing groups
	Index int      // position of the group among its siblings
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("svgmodel: element #%d in %s: %s", e.Index, formatPath(e.Path), ErrMissingName)
}

func (e *NamingError) Unwrap() error { return ErrMissingName }

// ModelShapeError is returned when a model has not the expected
// structure: missing tree or attrib, wrong JSON types, invalid paths.
type ModelShapeError struct {
	Path   []string
	Reason string
	Err    error // may be nil
}

func (e *ModelShapeError) Error() string {
	s := fmt.Sprintf("svgmodel: invalid model at %s: %s", formatPath(e.Path), e.Reason)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ModelShapeError) Unwrap() error { return e.Err }

// StorageError wraps the I/O failures.
type StorageError struct {
	Op   string // "read" or "write"
	File string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("svgmodel: %s %s: %s", e.Op, e.File, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
