package automaton

import "github.com/xxxsen/fuzzyac/internal/trie"

// compiled holds the per-node links derived from a finished trie. It is
// written once by compile and only read afterwards.
type compiled struct {
	fail []trie.NodeID
	// out points to the nearest node on the failure chain (excluding the node
	// itself) that ends a keyword, or trie.None.
	out []trie.NodeID
}

func compile(t *trie.Trie) *compiled {
	c := &compiled{
		fail: make([]trie.NodeID, t.Len()),
		out:  make([]trie.NodeID, t.Len()),
	}
	c.fail[trie.Root] = trie.Root
	c.out[trie.Root] = trie.None

	queue := make([]trie.NodeID, 0, t.Len())
	for _, e := range t.Edges(trie.Root) {
		c.fail[e.Child] = trie.Root
		c.out[e.Child] = trie.None
		queue = append(queue, e.Child)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range t.Edges(u) {
			v := e.Child
			f := c.fail[u]
			for {
				if next, ok := t.Child(f, e.Label); ok {
					c.fail[v] = next
					break
				}
				if f == trie.Root {
					c.fail[v] = trie.Root
					break
				}
				f = c.fail[f]
			}
			fv := c.fail[v]
			if _, ok := t.Keyword(fv); ok {
				c.out[v] = fv
			} else {
				c.out[v] = c.out[fv]
			}
			queue = append(queue, v)
		}
	}
	return c
}

// outputs appends every keyword recognised at id: its own keyword followed by
// the keywords along the output chain.
func (c *compiled) outputs(t *trie.Trie, id trie.NodeID, dst []string) []string {
	if kw, ok := t.Keyword(id); ok {
		dst = append(dst, kw)
	}
	for o := c.out[id]; o != trie.None; o = c.out[o] {
		kw, _ := t.Keyword(o)
		dst = append(dst, kw)
	}
	return dst
}
