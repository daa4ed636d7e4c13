// Package vfs implements the in-memory virtual filesystem: an immutable node
// tree, path resolution, the XML loader, the default tree and the session that
// tracks the current directory.
//
// This file contains error types and error handling utilities.
package vfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a path segment names no child of the directory
	ErrNotFound = errors.New("no such file or directory")

	// ErrNotADirectory indicates an attempt to descend through, or change
	// into, a file
	ErrNotADirectory = errors.New("not a directory")

	// ErrIsDirectory indicates a file operation on a directory
	ErrIsDirectory = errors.New("is a directory")

	// ErrSourceNotFound indicates the load source does not exist
	ErrSourceNotFound = errors.New("source not found")

	// ErrMalformed indicates the load source is not a well-formed document
	ErrMalformed = errors.New("malformed document")
)

// Error wraps VFS errors with the operation and the path that caused them.
// A load failure is an *Error with Op == OpLoad; a resolution failure has
// Op == OpResolve.
type Error struct {
	Op   string // Operation that failed (e.g., "resolve", "load")
	Path string // Path or source the operation was given
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// Common operation names for consistent logging and error reporting
const (
	OpResolve = "resolve" // Resolving a path to a node
	OpChdir   = "chdir"   // Changing the current directory
	OpRead    = "read"    // Reading file content
	OpLoad    = "load"    // Loading a tree from a source
	OpWatch   = "watch"   // Watching a source for changes
)

// IsLoadError reports whether err is a failed load, which callers recover
// from by falling back to the default tree.
func IsLoadError(err error) bool {
	var vfsErr *Error
	return errors.As(err, &vfsErr) && vfsErr.Op == OpLoad
}

// DecodeWarning records a file whose payload is not valid base64 of UTF-8
// text. It never fails a load; the file reads as BinaryContent.
type DecodeWarning struct {
	Path string // Absolute VFS path of the file
	Err  error
}

func (w DecodeWarning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}
