package automaton

import (
	"context"
	"unicode/utf8"

	"github.com/xxxsen/fuzzyac/internal/trie"
)

// entry is the cheapest known alignment of a node's path against a suffix of
// the text consumed so far. start is the byte offset where that suffix begins.
type entry struct {
	edits int
	start int
}

// frontier keeps one entry per node, bounded by k edits. buckets index nodes
// by edit count so insertions can be closed in ascending cost order.
type frontier struct {
	k       int
	entries map[trie.NodeID]entry
	buckets [][]trie.NodeID
}

func newFrontier(k int) *frontier {
	return &frontier{
		k:       k,
		entries: make(map[trie.NodeID]entry),
		buckets: make([][]trie.NodeID, k+1),
	}
}

func (f *frontier) reset() {
	clear(f.entries)
	for i := range f.buckets {
		f.buckets[i] = f.buckets[i][:0]
	}
}

// relax records (edits, start) for id when it beats the current entry. Lower
// edits win, then the earlier start.
func (f *frontier) relax(id trie.NodeID, edits, start int) {
	if edits > f.k {
		return
	}
	if e, ok := f.entries[id]; ok && (e.edits < edits || (e.edits == edits && e.start <= start)) {
		return
	}
	f.entries[id] = entry{edits: edits, start: start}
	f.buckets[edits] = append(f.buckets[edits], id)
}

// closeInsertions advances entries along trie edges without consuming text,
// one edit per edge, until the budget runs out.
func (f *frontier) closeInsertions(t *trie.Trie) {
	for d := 0; d < f.k; d++ {
		for i := 0; i < len(f.buckets[d]); i++ {
			id := f.buckets[d][i]
			e := f.entries[id]
			if e.edits != d {
				continue
			}
			for _, edge := range t.Edges(id) {
				f.relax(edge.Child, d+1, e.start)
			}
		}
	}
}

func (a *Automaton) scanFuzzy(ctx context.Context, text string, k int) ([]Match, error) {
	// Every node is reachable from the root by insertions alone, so no entry
	// costs more than the node depth. Larger bounds cannot change the result.
	k = min(k, a.maxDepth)
	done := ctx.Done()
	cur := newFrontier(k)
	next := newFrontier(k)
	cur.relax(trie.Root, 0, 0)
	cur.closeInsertions(a.trie)

	var res []Match
	for i, ch := range text {
		if cancelled(done) {
			return nil, ctx.Err()
		}
		end := i + utf8.RuneLen(ch)
		next.reset()
		for id, e := range cur.entries {
			// text rune not present in the keyword
			next.relax(id, e.edits+1, e.start)
			for _, edge := range a.trie.Edges(id) {
				cost := 1
				if edge.Label == ch {
					cost = 0
				}
				next.relax(edge.Child, e.edits+cost, e.start)
			}
		}
		next.relax(trie.Root, 0, end)
		next.closeInsertions(a.trie)

		for id, e := range next.entries {
			if e.start >= end {
				continue
			}
			kw, ok := a.trie.Keyword(id)
			if !ok {
				continue
			}
			res = append(res, Match{
				Keyword:  kw,
				Found:    text[e.start:end],
				Start:    e.start,
				End:      end,
				Distance: e.edits,
			})
		}
		cur, next = next, cur
	}
	return res, nil
}
