package ac

import "github.com/coregx/streambench/pattern"

// LowMem is the low-memory Aho-Corasick engine: per-state child slices
// instead of 256-way tables, plus a precomputed suffix link to the nearest
// ancestor (over the failure chain) that carries a pattern id.
type LowMem struct {
	trie    trie
	states  []lmState
	current int32
}

type lmChild struct {
	c     byte
	state int32
}

type lmState struct {
	children []lmChild
	failure  int32
	suffix   int32
	id       pattern.ID
}

// NewLowMem returns an empty engine.
func NewLowMem() *LowMem {
	return &LowMem{trie: newTrie()}
}

// AddPattern inserts a pattern before compilation.
func (a *LowMem) AddPattern(pat []byte, id pattern.ID) error {
	if a.states != nil {
		panic("ac: AddPattern after Compile")
	}
	a.trie.add(pat, id)
	return nil
}

// Compile flattens the trie and wires failure and suffix links.
func (a *LowMem) Compile() error {
	if a.states != nil {
		panic("ac: Compile called twice")
	}
	states := make([]lmState, a.trie.nStates)
	convertLowMem(a.trie.root, states, 0)
	a.trie = trie{}

	queue := make([]int32, 0, len(states))
	for _, ch := range states[0].children {
		states[ch.state].failure = 0
		states[ch.state].suffix = suffixLink(states, ch.state, 0)
		queue = append(queue, ch.state)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ch := range states[cur].children {
			fs := states[cur].failure
			fsChild := findChild(states, fs, ch.c)
			for fs != 0 && fsChild == 0 {
				fs = states[fs].failure
				fsChild = findChild(states, fs, ch.c)
			}
			states[ch.state].failure = fsChild
			states[ch.state].suffix = suffixLink(states, ch.state, fsChild)
			queue = append(queue, ch.state)
		}
	}
	a.states = states
	return nil
}

// suffixLink computes the suffix link for state given its failure target:
// the state itself when it ends a pattern, otherwise the failure target's
// suffix link.
func suffixLink(states []lmState, state, failure int32) int32 {
	if states[state].id != pattern.None {
		return state
	}
	return states[failure].suffix
}

// convertLowMem lays out the subtree rooted at n starting from index from,
// returning the next free index. Child slices come out sorted by byte.
func convertLowMem(n *node, states []lmState, from int32) int32 {
	pos := from
	from++
	states[pos].id = n.id
	for c := 0; c < 256; c++ {
		child := n.children[c]
		if child == nil {
			continue
		}
		states[pos].children = append(states[pos].children, lmChild{c: byte(c), state: from})
		from = convertLowMem(child, states, from)
	}
	return from
}

// findChild returns the child of state on byte c, or 0.
func findChild(states []lmState, state int32, c byte) int32 {
	for _, ch := range states[state].children {
		if ch.c == c {
			return ch.state
		}
	}
	return 0
}

// ReadByte advances the automaton and returns the id of the longest
// pattern ending at the current position, or pattern.None.
func (a *LowMem) ReadByte(c byte) pattern.ID {
	if a.states == nil {
		panic("ac: ReadByte before Compile")
	}
	states := a.states
	cur := a.current
	child := findChild(states, cur, c)
	for cur != 0 && child == 0 {
		cur = states[cur].failure
		child = findChild(states, cur, c)
	}
	if child != 0 {
		cur = child
	}
	a.current = cur
	return states[states[cur].suffix].id
}

// Reset returns the automaton to the root.
func (a *LowMem) Reset() {
	a.current = 0
}

// TotalMem reports the static footprint of the compiled engine in bytes.
func (a *LowMem) TotalMem() int {
	const stateSize = 24 + 4 + 4 + 4 // slice header + links + id
	mem := len(a.states)*stateSize + 24
	for i := range a.states {
		mem += len(a.states[i].children) * 8
	}
	return mem
}
