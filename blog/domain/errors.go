package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for unknown posts and tags.
var ErrNotFound = errors.New("not found")

// OpenError reports a repository that is missing, unreadable or corrupt.
type OpenError struct {
	Backend  string
	Location string
	Err      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %s repository %s: %v", e.Backend, e.Location, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// QueryError reports a backend failure while reading an open repository.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ClassificationError reports a request path that maps to no content.
type ClassificationError struct {
	Path   string
	Reason string
}

func (e *ClassificationError) Error() string {
	if e.Reason == "" {
		return "Unknown request: " + e.Path
	}
	return fmt.Sprintf("Unknown request: %s (%s)", e.Path, e.Reason)
}

// NewQueryError wraps err unless it already is a QueryError or ErrNotFound.
func NewQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &QueryError{Op: op, Err: err}
}
