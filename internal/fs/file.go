package fs

import (
	"context"
	"os"
	"syscall"

	"vfsemu/internal/logging"
	"vfsemu/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File represents a file of a VFS tree. Reads return the decoded content,
// the same text the shell's cat prints.
type File struct {
	mount *VFSMount
	tree  *vfs.Tree
	id    vfs.NodeID
}

func (f *File) content() ([]byte, error) {
	text, err := f.tree.Content(f.id)
	if err != nil {
		return nil, ToFuseError(err)
	}
	return []byte(text), nil
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	data, err := f.content()
	if err != nil {
		return err
	}

	a.Mode = 0444
	a.Nlink = 1
	a.Size = safeIntToUint64(len(data))
	a.Uid = f.mount.uid
	a.Gid = f.mount.gid
	a.BlockSize = 4096
	a.Blocks = safeIntToUint64((len(data) + 511) / 512)

	fileLogger.Trace("File attributes: %q size=%d", f.tree.Path(f.id), a.Size)
	return nil
}

// Open implements the NodeOpener interface. Only read access is allowed;
// the file itself serves as the handle.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	flags := int(req.Flags)
	fileLogger.Debug("Opening file %q with flags %v", f.tree.Path(f.id), flags)

	if flags&os.O_WRONLY != 0 || flags&os.O_RDWR != 0 {
		fileLogger.Warn("Attempted write access to read-only file: %q", f.tree.Path(f.id))
		return nil, syscall.EPERM
	}

	// content never changes for the lifetime of a tree
	resp.Flags |= fuse.OpenKeepCache
	return f, nil
}

// ReadAll implements the HandleReadAller interface.
func (f *File) ReadAll(_ context.Context) ([]byte, error) {
	fileLogger.Trace("Reading file %q", f.tree.Path(f.id))
	return f.content()
}
