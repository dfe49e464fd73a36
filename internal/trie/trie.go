package trie

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// NodeID addresses a node inside the trie arena.
type NodeID int32

// Root is the node with the empty path.
const Root NodeID = 0

// None marks an absent node reference.
const None NodeID = -1

var ErrInvalidPattern = errors.New("invalid pattern")

// Edge is a labelled transition to a child node.
type Edge struct {
	Label rune
	Child NodeID
}

type node struct {
	next     map[rune]NodeID
	edges    []Edge
	keyword  string
	terminal bool
	depth    int
	parent   NodeID
}

// Trie is an arena of nodes keyed by rune paths. Every node except the root
// has exactly one parent.
type Trie struct {
	nodes    []node
	keywords []string
}

func New() *Trie {
	return &Trie{nodes: []node{newNode(None, 0)}}
}

func newNode(parent NodeID, depth int) node {
	return node{parent: parent, depth: depth}
}

// Insert adds keyword to the trie. It reports whether the keyword was new.
func (t *Trie) Insert(keyword string) (bool, error) {
	if keyword == "" {
		return false, fmt.Errorf("%w: empty keyword", ErrInvalidPattern)
	}
	if !utf8.ValidString(keyword) {
		return false, fmt.Errorf("%w: keyword %q is not valid utf-8", ErrInvalidPattern, keyword)
	}
	cur := Root
	for _, r := range keyword {
		child, ok := t.nodes[cur].next[r]
		if !ok {
			child = t.addChild(cur, r)
		}
		cur = child
	}
	n := &t.nodes[cur]
	if n.terminal {
		return false, nil
	}
	n.terminal = true
	n.keyword = keyword
	t.keywords = append(t.keywords, keyword)
	return true, nil
}

func (t *Trie) addChild(parent NodeID, r rune) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, newNode(parent, t.nodes[parent].depth+1))
	p := &t.nodes[parent]
	if p.next == nil {
		p.next = make(map[rune]NodeID)
	}
	p.next[r] = id
	idx := sort.Search(len(p.edges), func(i int) bool { return p.edges[i].Label >= r })
	p.edges = append(p.edges, Edge{})
	copy(p.edges[idx+1:], p.edges[idx:])
	p.edges[idx] = Edge{Label: r, Child: id}
	return id
}

// Lookup walks path from the root and returns the node it ends at.
func (t *Trie) Lookup(path string) (NodeID, bool) {
	cur := Root
	for _, r := range path {
		child, ok := t.nodes[cur].next[r]
		if !ok {
			return None, false
		}
		cur = child
	}
	return cur, true
}

func (t *Trie) Child(id NodeID, r rune) (NodeID, bool) {
	child, ok := t.nodes[id].next[r]
	return child, ok
}

// Edges returns the outgoing edges of id ordered by label. The slice is
// shared with the trie and must not be modified.
func (t *Trie) Edges(id NodeID) []Edge {
	return t.nodes[id].edges
}

// Keyword returns the keyword ending exactly at id.
func (t *Trie) Keyword(id NodeID) (string, bool) {
	n := &t.nodes[id]
	return n.keyword, n.terminal
}

func (t *Trie) Depth(id NodeID) int {
	return t.nodes[id].depth
}

// Len returns the number of nodes, root included.
func (t *Trie) Len() int {
	return len(t.nodes)
}

// Keywords returns the distinct keywords in insertion order.
func (t *Trie) Keywords() []string {
	out := make([]string, len(t.keywords))
	copy(out, t.keywords)
	return out
}
