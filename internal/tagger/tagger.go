package tagger

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/fuzzyac/internal/automaton"
	"github.com/xxxsen/fuzzyac/internal/dictionary"
	"github.com/xxxsen/fuzzyac/internal/document"
)

const defaultConcurrency = 4

// Result holds the matches of one dictionary in one document.
type Result struct {
	Document   string            `json:"document"`
	Dictionary string            `json:"dictionary"`
	Matches    []automaton.Match `json:"matches"`
}

type config struct {
	concurrency int
	dicts       []string
	maxDistance *int
}

type Option func(c *config)

func WithConcurrency(n int) Option {
	return func(c *config) {
		c.concurrency = n
	}
}

// WithDictionaries limits tagging to the named dictionaries.
func WithDictionaries(names ...string) Option {
	return func(c *config) {
		c.dicts = names
	}
}

// WithMaxDistance overrides the default distance of every dictionary.
func WithMaxDistance(d int) Option {
	return func(c *config) {
		c.maxDistance = &d
	}
}

// Tagger scans documents against a set of dictionaries.
type Tagger struct {
	c     *config
	dicts []*dictionary.Dictionary
}

func New(set *dictionary.Set, opts ...Option) (*Tagger, error) {
	c := &config{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency <= 0 {
		return nil, fmt.Errorf("invalid concurrency:%d", c.concurrency)
	}
	if c.maxDistance != nil && *c.maxDistance < 0 {
		return nil, fmt.Errorf("%w: max distance %d is negative", automaton.ErrInvalidArgument, *c.maxDistance)
	}
	t := &Tagger{c: c}
	if len(c.dicts) == 0 {
		t.dicts = set.List()
	}
	for _, name := range c.dicts {
		d, ok := set.Get(name)
		if !ok {
			return nil, fmt.Errorf("dictionary:%s not found", name)
		}
		t.dicts = append(t.dicts, d)
	}
	if len(t.dicts) == 0 {
		return nil, fmt.Errorf("no dictionary to tag with")
	}
	return t, nil
}

// Tag scans every document with every dictionary. Results follow document
// order, then dictionary order. The first error cancels the remaining scans.
func (t *Tagger) Tag(ctx context.Context, docs []*document.Document) ([]Result, error) {
	var opts []automaton.SearchOption
	if t.c.maxDistance != nil {
		opts = append(opts, automaton.WithMaxDistance(*t.c.maxDistance))
	}
	res := make([]Result, len(docs)*len(t.dicts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(t.c.concurrency)
	for i, doc := range docs {
		for j, dict := range t.dicts {
			slot := &res[i*len(t.dicts)+j]
			eg.Go(func() error {
				start := time.Now()
				ms, err := dict.Search(ctx, doc.Text, opts...)
				if err != nil {
					return fmt.Errorf("tag document:%s with dict:%s failed, err:%w", doc.Name, dict.Name(), err)
				}
				logutil.GetLogger(ctx).Debug("document tagged",
					zap.String("document", doc.Name),
					zap.String("dict", dict.Name()),
					zap.Int("match_count", len(ms)),
					zap.Duration("cost", time.Since(start)))
				*slot = Result{Document: doc.Name, Dictionary: dict.Name(), Matches: ms}
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
