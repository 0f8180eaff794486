// Package pattern builds and queries the patterns tree: a reverse-suffix
// tree over the dictionary.
//
// A node's parent is the longest dictionary pattern that is a proper suffix
// of the node's own pattern; the root holds the empty pattern. Matchers
// identify patterns by ID - an index into the compiled tree's node arena -
// so ids are copyable primitives, comparable for equality, and live exactly
// as long as the tree. The ancestor walk implements the "is a proper suffix
// of" query in time proportional to the suffix depth.
//
// Construction runs in two phases. A Builder accumulates patterns into a
// scaffold tree whose edges carry the byte difference between parent and
// child; Build then walks the scaffold depth-first, reconstructing each
// node's full pattern right-to-left in a shared scratch buffer, handing
// every pattern exactly once to the matchers' add callback, and emitting
// the compact arena tree. The scaffold is discarded.
package pattern

import "bytes"

// ID is an opaque handle to a dictionary pattern: the index of its node in
// the compiled tree. The zero value is the root (empty pattern), which is
// never handed to matchers.
type ID int32

// None is the distinguished no-pattern id.
const None ID = -1

// Meta records where a pattern came from in the dictionary.
type Meta struct {
	File int // dictionary file index, from 0
	Line int // line number within the file, from 1
}

// Node is one compiled tree node.
type Node struct {
	Parent   ID
	Meta     Meta
	Children []ID
}

// Tree is the compiled patterns tree.
type Tree struct {
	nodes []Node
}

// Root returns the id of the root node.
func (t *Tree) Root() ID { return 0 }

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for id. The returned pointer is valid for the
// lifetime of the tree; the tree is immutable after Build.
func (t *Tree) Node(id ID) *Node { return &t.nodes[id] }

// Meta returns the dictionary origin of the pattern id.
func (t *Tree) Meta(id ID) Meta { return t.nodes[id].Meta }

// IsSuffix reports whether pattern a is a proper suffix of pattern b,
// by walking parent pointers from b. IsSuffix(x, x) is false, and None is
// neither a suffix nor a superstring of anything.
func (t *Tree) IsSuffix(a, b ID) bool {
	if a == None || b == None || a == b {
		return false
	}
	for cur := t.nodes[b].Parent; cur != None; cur = t.nodes[cur].Parent {
		if cur == a {
			return true
		}
	}
	return false
}

// scaffoldNode is a node of the construction-phase full patterns tree.
type scaffoldNode struct {
	meta     Meta
	present  bool // a dictionary pattern ends exactly here
	children []scaffoldEdge
}

// scaffoldEdge links a scaffold node to a child; label holds the bytes that
// the child's pattern prepends to this node's pattern.
type scaffoldEdge struct {
	label []byte
	node  *scaffoldNode
}

// Builder accumulates dictionary patterns into the scaffold tree.
type Builder struct {
	root   scaffoldNode
	maxLen int
	count  int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Count returns the number of distinct patterns added so far.
func (b *Builder) Count() int { return b.count }

// Add inserts one decoded pattern. Empty patterns are ignored; duplicate
// patterns keep the meta of their first insertion. The pattern bytes are
// copied.
func (b *Builder) Add(pat []byte, meta Meta) {
	if len(pat) == 0 {
		return
	}
	if len(pat) > b.maxLen {
		b.maxLen = len(pat)
	}
	p := make([]byte, len(pat))
	copy(p, pat)
	b.insert(&b.root, p, meta)
}

// insert places the remaining prefix of a pattern under node. remaining is
// the pattern minus the suffix that node already represents.
func (b *Builder) insert(node *scaffoldNode, remaining []byte, meta Meta) {
	if len(remaining) == 0 {
		// The pattern is exactly this node.
		if !node.present {
			node.present = true
			node.meta = meta
			b.count++
		}
		return
	}

	// Descend into a child whose pattern is a suffix of (or equal to) the
	// new one; equality bottoms out in the len==0 branch above.
	for _, edge := range node.children {
		if len(edge.label) <= len(remaining) && bytes.Equal(remaining[len(remaining)-len(edge.label):], edge.label) {
			b.insert(edge.node, remaining[:len(remaining)-len(edge.label)], meta)
			return
		}
	}

	// The new pattern may sit between this node and some of its children:
	// split every edge whose child has the new pattern as a proper suffix,
	// moving those children under the new node with shortened labels.
	fresh := &scaffoldNode{meta: meta, present: true}
	kept := node.children[:0]
	for _, edge := range node.children {
		if isSuffixOf(remaining, edge.label) {
			fresh.children = append(fresh.children, scaffoldEdge{
				label: edge.label[:len(edge.label)-len(remaining)],
				node:  edge.node,
			})
		} else {
			kept = append(kept, edge)
		}
	}
	node.children = append(kept, scaffoldEdge{label: remaining, node: fresh})
	b.count++
}

// isSuffixOf reports whether suf is a proper suffix of str.
func isSuffixOf(suf, str []byte) bool {
	if len(str) <= len(suf) {
		return false
	}
	return bytes.Equal(str[len(str)-len(suf):], suf)
}

// AddFunc receives each distinct pattern once during Build, together with
// its compiled node id. Implementations must not retain pat: the slice
// aliases a scratch buffer reused across calls.
type AddFunc func(pat []byte, id ID) error

// Build compacts the scaffold into the arena tree, invoking add exactly
// once per distinct pattern (never for the root). The Builder must not be
// used afterwards.
func (b *Builder) Build(add AddFunc) (*Tree, error) {
	t := &Tree{nodes: make([]Node, 0, b.count+1)}
	buf := make([]byte, b.maxLen)
	if _, err := b.compact(&b.root, buf, len(buf), None, t, add); err != nil {
		return nil, err
	}
	b.root = scaffoldNode{}
	return t, nil
}

// compact converts one scaffold node and its subtree. pos is the offset in
// buf where this node's pattern starts; the pattern occupies buf[pos:].
func (b *Builder) compact(sn *scaffoldNode, buf []byte, pos int, parent ID, t *Tree, add AddFunc) (ID, error) {
	id := ID(len(t.nodes))
	t.nodes = append(t.nodes, Node{Parent: parent, Meta: sn.meta})

	children := make([]ID, 0, len(sn.children))
	for _, edge := range sn.children {
		at := pos - len(edge.label)
		copy(buf[at:pos], edge.label)
		child, err := b.compact(edge.node, buf, at, id, t, add)
		if err != nil {
			return None, err
		}
		children = append(children, child)
	}
	t.nodes[id].Children = children

	if id != 0 {
		if err := add(buf[pos:], id); err != nil {
			return None, err
		}
	}
	return id, nil
}
