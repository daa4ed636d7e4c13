package vfs

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Builder assembles a Tree off to the side. Nothing built is visible to a
// Session until Build returns and the caller swaps the tree in.
type Builder struct {
	nodes []node
	built bool
}

// NewBuilder returns a builder holding only the root directory.
func NewBuilder() *Builder {
	return &Builder{
		nodes: []node{{
			parent:   NoParent,
			kind:     KindDirectory,
			children: make(map[string]NodeID),
		}},
	}
}

// Dir adds a directory named name under parent and returns its ID.
func (b *Builder) Dir(parent NodeID, name string) NodeID {
	return b.add(parent, node{
		name:     name,
		kind:     KindDirectory,
		children: make(map[string]NodeID),
	})
}

// File adds a file with the given encoded payload under parent.
func (b *Builder) File(parent NodeID, name, payload string) NodeID {
	return b.add(parent, node{
		name:    name,
		kind:    KindFile,
		payload: payload,
	})
}

// add links n under parent. A name already present in parent is replaced by
// the new node, the old subtree becoming unreachable.
func (b *Builder) add(parent NodeID, n node) NodeID {
	if b.built {
		panic("vfs: Builder used after Build")
	}
	if parent < 0 || int(parent) >= len(b.nodes) || b.nodes[parent].kind != KindDirectory {
		panic(fmt.Sprintf("vfs: parent %d is not a directory", parent))
	}

	id := NodeID(len(b.nodes))
	n.parent = parent
	b.nodes = append(b.nodes, n)

	if prev, exists := b.nodes[parent].children[n.name]; exists {
		treeLogger.Debug("Duplicate name %q under node %d replaces node %d", n.name, parent, prev)
	}
	b.nodes[parent].children[n.name] = id
	return id
}

// Build returns the finished tree. The builder must not be used afterwards.
func (b *Builder) Build() *Tree {
	b.built = true
	t := &Tree{
		nodes:   b.nodes,
		content: cmap.NewStringer[NodeID, string](),
	}
	b.nodes = nil
	treeLogger.Debug("Built tree with %d nodes", len(t.nodes))
	return t
}
