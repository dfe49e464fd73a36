package dnsfilter

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xxxsen/fuzzyac/internal/automaton"
	"github.com/xxxsen/fuzzyac/internal/dictionary"
)

const defaultCacheSize = 4096

// Verdict is the decision taken for a query name.
type Verdict struct {
	Blocked bool
	// Match is the first keyword hit when Blocked.
	Match automaton.Match
}

type cachedVerdict struct {
	ac *automaton.Automaton
	v  Verdict
}

// Filter decides whether a name hits a dictionary. Verdicts are cached per
// name and dropped once the dictionary has been reloaded.
type Filter struct {
	dict  *dictionary.Dictionary
	cache *lru.Cache[string, cachedVerdict]
}

func NewFilter(dict *dictionary.Dictionary, cacheSize int) (*Filter, error) {
	if dict == nil {
		return nil, fmt.Errorf("no dictionary found")
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, err := lru.New[string, cachedVerdict](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Filter{dict: dict, cache: c}, nil
}

// Check searches the normalised name with the dictionary's default distance.
func (f *Filter) Check(ctx context.Context, name string) (Verdict, error) {
	name = normalizeName(name)
	ac := f.dict.Automaton()
	if cv, ok := f.cache.Get(name); ok && cv.ac == ac {
		return cv.v, nil
	}
	ms, err := ac.Search(ctx, name)
	if err != nil {
		return Verdict{}, err
	}
	v := Verdict{}
	if len(ms) > 0 {
		v = Verdict{Blocked: true, Match: ms[0]}
	}
	f.cache.Add(name, cachedVerdict{ac: ac, v: v})
	return v, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}
