package loader

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned for snippet files whose extension maps
// to no supported format.
var ErrUnknownFormat = errors.New("unknown snippet file format")

// ErrCacheClosed is returned when a closed cache is queried.
var ErrCacheClosed = errors.New("snippet cache closed")

// ParseError describes an invalid snippet file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Message describes the problem.
	Message string

	// Err is the underlying decoder error, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing snippet file %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }
