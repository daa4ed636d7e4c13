// Package fs serves a VFS tree over FUSE.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"syscall"

	"vfsemu/internal/logging"
	"vfsemu/internal/vfs"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrUnknownKind indicates a node that is neither a directory nor a file
	ErrUnknownKind = errors.New("unknown node kind")
)

// OpLookup names a failed child lookup in errors and logs
const OpLookup = "lookup"

// ToFuseError converts a VFS error to the errno FUSE expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	errLogger.Trace("Converting error to FUSE error: %v", err)
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, vfs.ErrIsDirectory):
		return syscall.EISDIR
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}
