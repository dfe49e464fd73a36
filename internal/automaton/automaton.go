package automaton

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/xxxsen/fuzzyac/internal/trie"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Match is one keyword occurrence. Start and End are byte offsets into the
// scanned text, Distance counts rune edits between Found and Keyword.
type Match struct {
	Keyword  string `json:"keyword"`
	Found    string `json:"found"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Distance int    `json:"distance"`
}

// Automaton is an Aho-Corasick automaton over a fixed keyword set. It is
// immutable once New returns and safe for concurrent use.
type Automaton struct {
	trie        *trie.Trie
	links       *compiled
	maxDistance int
	// maxDepth is the rune length of the longest keyword.
	maxDepth int
}

// New builds and compiles an automaton for keywords.
func New(keywords []string, opts ...Option) (*Automaton, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxDistance < 0 {
		return nil, fmt.Errorf("%w: default max distance %d is negative", ErrInvalidArgument, o.maxDistance)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: keyword set is empty", ErrInvalidArgument)
	}
	t := trie.New()
	maxDepth := 0
	for _, kw := range keywords {
		if _, err := t.Insert(kw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		id, _ := t.Lookup(kw)
		maxDepth = max(maxDepth, t.Depth(id))
	}
	return &Automaton{
		trie:        t,
		links:       compile(t),
		maxDistance: o.maxDistance,
		maxDepth:    maxDepth,
	}, nil
}

// Keywords returns the distinct keywords the automaton was built from.
func (a *Automaton) Keywords() []string {
	return a.trie.Keywords()
}

func (a *Automaton) DefaultMaxDistance() int {
	return a.maxDistance
}

// Search reports every keyword occurrence in text within the configured edit
// distance. Results are sorted with SortMatches. ctx is checked once per rune.
func (a *Automaton) Search(ctx context.Context, text string, opts ...SearchOption) ([]Match, error) {
	so := &searchOptions{maxDistance: a.maxDistance}
	for _, opt := range opts {
		opt(so)
	}
	if so.maxDistance < 0 {
		return nil, fmt.Errorf("%w: max distance %d is negative", ErrInvalidArgument, so.maxDistance)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid utf-8", ErrInvalidArgument)
	}
	var (
		res []Match
		err error
	)
	if so.maxDistance == 0 {
		res, err = a.scanExact(ctx, text)
	} else {
		res, err = a.scanFuzzy(ctx, text, so.maxDistance)
	}
	if err != nil {
		return nil, err
	}
	SortMatches(res)
	return res, nil
}

// SortMatches orders matches by start, end, distance and keyword.
func SortMatches(ms []Match) {
	sort.Slice(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Keyword < b.Keyword
	})
}

func cancelled(done <-chan struct{}) bool {
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}
