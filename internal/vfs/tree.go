package vfs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vfsemu/internal/logging"

	"github.com/maruel/natural"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	treeLogger = logging.GetLogger().WithPrefix("tree")
)

// NodeID addresses a node inside the arena of a single Tree. IDs are only
// meaningful for the tree that issued them.
type NodeID int32

const (
	// RootID is the ID of the root directory of every tree
	RootID NodeID = 0
	// NoParent is the parent of the root
	NoParent NodeID = -1
)

// String implements fmt.Stringer, used as the content cache key
func (id NodeID) String() string {
	return strconv.Itoa(int(id))
}

// Kind tells directories and files apart.
type Kind uint8

const (
	KindDirectory Kind = iota
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	}
	return "unknown"
}

type node struct {
	name   string
	kind   Kind
	parent NodeID

	// directories only
	children map[string]NodeID

	// files only: encoded payload exactly as given by the source
	payload string
}

// Tree is an immutable directory/file hierarchy stored in an arena. Parent
// and child links are plain IDs; the arena owns every node.
//
// The only mutable state is the cache of decoded file content, which is
// owned by the tree and discarded with it.
type Tree struct {
	nodes   []node
	content cmap.ConcurrentMap[NodeID, string]
}

// Root returns the ID of the root directory
func (t *Tree) Root() NodeID {
	return RootID
}

// Contains reports whether id addresses a node of t
func (t *Tree) Contains(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Size returns the number of nodes reachable from the root
func (t *Tree) Size() int {
	count := 0
	t.Walk(func(NodeID) bool {
		count++
		return true
	})
	return count
}

// Name returns the node's name; the root's name is empty.
func (t *Tree) Name(id NodeID) string {
	return t.nodes[id].name
}

// Kind returns whether the node is a directory or a file
func (t *Tree) Kind(id NodeID) Kind {
	return t.nodes[id].kind
}

// IsDir reports whether id is a directory
func (t *Tree) IsDir(id NodeID) bool {
	return t.nodes[id].kind == KindDirectory
}

// Parent returns the parent directory of id, or false for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	parent := t.nodes[id].parent
	return parent, parent != NoParent
}

// Child looks up name among the direct children of dir. Looking up a child
// of a file always fails.
func (t *Tree) Child(dir NodeID, name string) (NodeID, bool) {
	n := &t.nodes[dir]
	if n.kind != KindDirectory {
		return 0, false
	}
	id, ok := n.children[name]
	return id, ok
}

// Children returns the names of the direct children of dir in natural order
// ("file2" sorts before "file10"). Files have no children.
func (t *Tree) Children(dir NodeID) []string {
	n := &t.nodes[dir]
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return natural.Less(names[i], names[j])
	})
	return names
}

// Len returns the number of direct children of dir
func (t *Tree) Len(dir NodeID) int {
	return len(t.nodes[dir].children)
}

// Payload returns the encoded payload of a file, or "" for a directory.
func (t *Tree) Payload(id NodeID) string {
	return t.nodes[id].payload
}

// Path returns the canonical absolute path of id, computed by walking parent
// links up to the root.
func (t *Tree) Path(id NodeID) string {
	var parts []string
	for cur := id; cur != RootID && cur != NoParent; cur = t.nodes[cur].parent {
		parts = append(parts, t.nodes[cur].name)
	}
	if len(parts) == 0 {
		return "/"
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Walk visits every node reachable from the root depth-first, children in
// natural order. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(id NodeID) bool) {
	var visit func(id NodeID)
	visit = func(id NodeID) {
		if !fn(id) || t.nodes[id].kind != KindDirectory {
			return
		}
		for _, name := range t.Children(id) {
			visit(t.nodes[id].children[name])
		}
	}
	visit(RootID)
}

// Content returns the decoded text of a file. The payload is decoded on the
// first call and cached for the lifetime of the tree; a payload that is not
// base64 of UTF-8 text reads as BinaryContent.
func (t *Tree) Content(id NodeID) (string, error) {
	if !t.Contains(id) {
		return "", &Error{Op: OpRead, Path: id.String(), Err: ErrNotFound}
	}
	n := &t.nodes[id]
	if n.kind != KindFile {
		return "", &Error{Op: OpRead, Path: t.Path(id), Err: ErrIsDirectory}
	}

	if text, ok := t.content.Get(id); ok {
		return text, nil
	}

	text, err := DecodePayload(n.payload)
	if err != nil {
		treeLogger.Debug("Payload of %q is not text: %v", t.Path(id), err)
		text = BinaryContent
	}
	t.content.SetIfAbsent(id, text)
	treeLogger.Trace("Decoded %q (%d bytes)", t.Path(id), len(text))
	return text, nil
}

// Describe returns the one-line descriptor used by listings:
// "Directory: <name> (<k> items)" or "File: <name>".
func (t *Tree) Describe(id NodeID) string {
	n := &t.nodes[id]
	switch n.kind {
	case KindDirectory:
		return fmt.Sprintf("Directory: %s (%d items)", n.name, len(n.children))
	case KindFile:
		return "File: " + n.name
	}
	return ""
}
