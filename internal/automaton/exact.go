package automaton

import (
	"context"
	"unicode/utf8"

	"github.com/xxxsen/fuzzyac/internal/trie"
)

func (a *Automaton) scanExact(ctx context.Context, text string) ([]Match, error) {
	done := ctx.Done()
	var (
		res []Match
		kws []string
	)
	node := trie.Root
	for i, ch := range text {
		if cancelled(done) {
			return nil, ctx.Err()
		}
		node = a.step(node, ch)
		kws = a.links.outputs(a.trie, node, kws[:0])
		if len(kws) == 0 {
			continue
		}
		end := i + utf8.RuneLen(ch)
		for _, kw := range kws {
			start := end - len(kw)
			res = append(res, Match{
				Keyword: kw,
				Found:   text[start:end],
				Start:   start,
				End:     end,
			})
		}
	}
	return res, nil
}

// step follows the goto edge for ch, falling back along failure links. The
// root accepts every rune.
func (a *Automaton) step(node trie.NodeID, ch rune) trie.NodeID {
	for {
		if next, ok := a.trie.Child(node, ch); ok {
			return next
		}
		if node == trie.Root {
			return trie.Root
		}
		node = a.links.fail[node]
	}
}
