// Package ac implements the Aho-Corasick reference engines the harness
// measures the stream matchers against.
//
// Two variants share the same two-phase construction. Patterns first go
// into a trie of nodes with 256 child pointers; compiling flattens the trie
// into a contiguous state array (breadth matters less than locality on the
// per-byte walk) and wires failure links by breadth-first traversal. After
// compilation, reading a byte walks failure links until a state with a
// transition on that byte is found (or the root), advances, and returns the
// id of the longest dictionary pattern ending at the position.
//
// Dense keeps a full 256-way table per state; states inherit the pattern id
// over their failure chain during compilation, so once the failure walk
// and transition are done the id is read straight off the state. LowMem replaces the tables with small per-state
// child slices and instead precomputes a suffix link to the nearest
// id-carrying ancestor, trading the per-byte walk for an order of magnitude
// less memory on large dictionaries.
package ac

import (
	"github.com/coregx/streambench/pattern"
)

// node is a trie node of the construction phase.
type node struct {
	children [256]*node
	id       pattern.ID
}

func newNode() *node {
	n := &node{}
	n.id = pattern.None
	return n
}

// trie is the shared pre-compilation structure.
type trie struct {
	root    *node
	nStates int
}

func newTrie() trie {
	return trie{root: newNode(), nStates: 1}
}

// add inserts a pattern, creating the missing path nodes.
func (t *trie) add(pat []byte, id pattern.ID) {
	cur := t.root
	i := 0
	for i < len(pat) && cur.children[pat[i]] != nil {
		cur = cur.children[pat[i]]
		i++
	}
	for ; i < len(pat); i++ {
		next := newNode()
		cur.children[pat[i]] = next
		cur = next
		t.nStates++
	}
	cur.id = id
}

// Dense is the 256-way-table Aho-Corasick engine. It is the harness's
// oracle: ReadByte returns, for every byte, the id of the longest
// dictionary pattern whose occurrence ends there.
type Dense struct {
	trie    trie
	states  []denseState
	current int32
}

type denseState struct {
	children [256]int32 // 0 = no transition; the root is never a child
	failure  int32
	id       pattern.ID
}

// NewDense returns an empty engine.
func NewDense() *Dense {
	return &Dense{trie: newTrie()}
}

// AddPattern inserts a pattern before compilation.
func (a *Dense) AddPattern(pat []byte, id pattern.ID) error {
	if a.states != nil {
		panic("ac: AddPattern after Compile")
	}
	a.trie.add(pat, id)
	return nil
}

// Compile flattens the trie into the state array and wires failure links.
func (a *Dense) Compile() error {
	if a.states != nil {
		panic("ac: Compile called twice")
	}
	states := make([]denseState, a.trie.nStates)
	convertDense(a.trie.root, states, 0)
	a.trie = trie{}

	// Breadth-first failure linking. A state whose own id is None inherits
	// the id of its failure target, so every state ends up holding the
	// longest pattern that is a suffix of its path.
	queue := make([]int32, 0, len(states))
	for c := 0; c < 256; c++ {
		if s := states[0].children[c]; s != 0 {
			states[s].failure = 0
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if states[cur].id == pattern.None {
			states[cur].id = states[states[cur].failure].id
		}
		for c := 0; c < 256; c++ {
			child := states[cur].children[c]
			if child == 0 {
				continue
			}
			fs := states[cur].failure
			for fs != 0 && states[fs].children[c] == 0 {
				fs = states[fs].failure
			}
			states[child].failure = states[fs].children[c]
			queue = append(queue, child)
		}
	}
	a.states = states
	return nil
}

// convertDense lays out the subtree rooted at n starting from index from,
// returning the next free index.
func convertDense(n *node, states []denseState, from int32) int32 {
	pos := from
	from++
	states[pos].id = n.id
	for c := 0; c < 256; c++ {
		child := n.children[c]
		if child == nil {
			continue
		}
		states[pos].children[c] = from
		from = convertDense(child, states, from)
	}
	return from
}

// ReadByte advances the automaton and returns the id of the longest
// pattern ending at the current position, or pattern.None.
func (a *Dense) ReadByte(c byte) pattern.ID {
	if a.states == nil {
		panic("ac: ReadByte before Compile")
	}
	states := a.states
	cur := a.current
	for cur != 0 && states[cur].children[c] == 0 {
		cur = states[cur].failure
	}
	if next := states[cur].children[c]; next != 0 {
		cur = next
	}
	a.current = cur
	return states[cur].id
}

// Reset returns the automaton to the root.
func (a *Dense) Reset() {
	a.current = 0
}

// TotalMem reports the static footprint of the compiled engine in bytes.
func (a *Dense) TotalMem() int {
	const stateSize = 256*4 + 4 + 4
	return len(a.states)*stateSize + 24
}
