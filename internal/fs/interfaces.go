// internal/fs/interfaces.go

package fs

import (
	"bazil.org/fuse/fs"
)

// Directory represents a read-only directory in the mounted filesystem
type Directory interface {
	fs.Node
	fs.NodeStringLookuper
	fs.HandleReadDirAller
}

// FileInterface represents a read-only file in the mounted filesystem
type FileInterface interface {
	fs.Node
	fs.NodeOpener
	fs.HandleReadAller
}

var (
	_ fs.FS         = (*VFSMount)(nil)
	_ Directory     = (*Dir)(nil)
	_ FileInterface = (*File)(nil)
)
