package vfs

import (
	"strings"
)

// Resolve converts path into a node of t. Paths starting with "/" are
// resolved from the root, all others from start, which must be a directory.
//
// Empty segments are dropped, so "//a///b/" equals "/a/b". ".." moves to the
// parent and is a no-op at the root. "." has no special meaning and is looked
// up like any other name. Resolution never modifies t.
func Resolve(t *Tree, start NodeID, path string) (NodeID, error) {
	cur := start
	if strings.HasPrefix(path, "/") {
		cur = RootID
	}

	for _, segment := range strings.Split(path, "/") {
		switch segment {
		case "":
			continue
		case "..":
			if parent, ok := t.Parent(cur); ok {
				cur = parent
			}
			continue
		}

		if !t.IsDir(cur) {
			return 0, &Error{Op: OpResolve, Path: path, Err: ErrNotADirectory}
		}
		child, ok := t.Child(cur, segment)
		if !ok {
			return 0, &Error{Op: OpResolve, Path: path, Err: ErrNotFound}
		}
		cur = child
	}

	return cur, nil
}
