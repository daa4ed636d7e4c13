package fs

import (
	"context"
	"os"
	"path"

	"vfsemu/internal/logging"
	"vfsemu/internal/vfs"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a directory of a VFS tree. A nil tree marks the mount root,
// which always serves the session's active tree; every other Dir keeps the
// tree it was looked up in, so an open subtree stays consistent across a
// reload.
type Dir struct {
	mount *VFSMount
	tree  *vfs.Tree
	id    vfs.NodeID
}

// view returns the tree and node this directory currently stands for
func (d *Dir) view() (*vfs.Tree, vfs.NodeID) {
	if d.tree == nil {
		tree := d.mount.session.Tree()
		return tree, tree.Root()
	}
	return d.tree, d.id
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	tree, id := d.view()
	dirLogger.Trace("Getting attributes for directory: %q", tree.Path(id))

	a.Mode = os.ModeDir | 0555
	a.Nlink = 2
	a.Uid = d.mount.uid
	a.Gid = d.mount.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	tree, id := d.view()
	dirLogger.Debug("Looking up %q in directory %q", name, tree.Path(id))

	child, ok := tree.Child(id, name)
	if !ok {
		return nil, ToFuseError(&vfs.Error{Op: OpLookup, Path: path.Join(tree.Path(id), name), Err: vfs.ErrNotFound})
	}

	switch tree.Kind(child) {
	case vfs.KindDirectory:
		return &Dir{mount: d.mount, tree: tree, id: child}, nil
	case vfs.KindFile:
		return &File{mount: d.mount, tree: tree, id: child}, nil
	}
	return nil, ToFuseError(ErrUnknownKind)
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	tree, id := d.view()
	names := tree.Children(id)
	dirLogger.Debug("Reading directory %q (%d entries)", tree.Path(id), len(names))

	entries := make([]fuse.Dirent, 0, len(names)+2)
	entries = append(entries, fuse.Dirent{Name: ".", Type: fuse.DT_Dir})
	entries = append(entries, fuse.Dirent{Name: "..", Type: fuse.DT_Dir})

	for _, name := range names {
		child, _ := tree.Child(id, name)
		entry := fuse.Dirent{Name: name, Type: fuse.DT_File}
		if tree.IsDir(child) {
			entry.Type = fuse.DT_Dir
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
