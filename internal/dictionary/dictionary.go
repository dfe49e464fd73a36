package dictionary

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/fuzzyac/internal/automaton"
	"go.uber.org/zap"
)

// Dictionary is a named keyword set compiled into an automaton. Reload
// replaces the automaton as a whole; searches in flight keep the one they
// started with.
type Dictionary struct {
	name        string
	maxDistance int
	sources     []ISource
	current     atomic.Pointer[automaton.Automaton]
	loadedAt    atomic.Int64
}

// New collects keywords from every source and compiles them.
func New(ctx context.Context, name string, maxDistance int, sources ...ISource) (*Dictionary, error) {
	if name == "" {
		return nil, fmt.Errorf("dictionary name is empty")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("dictionary %s has no sources", name)
	}
	d := &Dictionary{
		name:        name,
		maxDistance: maxDistance,
		sources:     sources,
	}
	if err := d.Reload(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dictionary) Name() string {
	return d.name
}

// Automaton returns the automaton currently serving searches.
func (d *Dictionary) Automaton() *automaton.Automaton {
	return d.current.Load()
}

func (d *Dictionary) LoadedAt() time.Time {
	return time.UnixMilli(d.loadedAt.Load())
}

func (d *Dictionary) Search(ctx context.Context, text string, opts ...automaton.SearchOption) ([]automaton.Match, error) {
	return d.Automaton().Search(ctx, text, opts...)
}

// Files returns every file backing the dictionary.
func (d *Dictionary) Files() []string {
	var files []string
	for _, src := range d.sources {
		files = append(files, src.Files()...)
	}
	return files
}

// Reload rebuilds the automaton from the sources. On failure the previous
// automaton stays in place.
func (d *Dictionary) Reload(ctx context.Context) error {
	var keywords []string
	for _, src := range d.sources {
		kws, err := src.Keywords(ctx)
		if err != nil {
			return fmt.Errorf("load source failed, dict:%s, source:%s, err:%w", d.name, src.Name(), err)
		}
		keywords = append(keywords, kws...)
	}
	ac, err := automaton.New(keywords, automaton.WithDefaultMaxDistance(d.maxDistance))
	if err != nil {
		return fmt.Errorf("build dictionary %s: %w", d.name, err)
	}
	d.current.Store(ac)
	d.loadedAt.Store(time.Now().UnixMilli())
	logutil.GetLogger(ctx).Info("dictionary loaded",
		zap.String("dict", d.name),
		zap.Int("keyword_count", len(ac.Keywords())),
		zap.Int("max_distance", d.maxDistance))
	return nil
}
