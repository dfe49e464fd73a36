package cmd

import (
	"context"
	"fmt"

	"github.com/xxxsen/fuzzyac/internal/config"
	"github.com/xxxsen/fuzzyac/internal/dictionary"
)

// buildDictionaries compiles every configured dictionary. The second result
// holds the ones that asked to be watched.
func buildDictionaries(ctx context.Context, cfgs []config.DictionaryConfig) (*dictionary.Set, []*dictionary.Dictionary, error) {
	dicts := make([]*dictionary.Dictionary, 0, len(cfgs))
	var watched []*dictionary.Dictionary
	for _, dc := range cfgs {
		srcs := make([]dictionary.ISource, 0, len(dc.Sources))
		for idx, sc := range dc.Sources {
			src, err := dictionary.MakeSource(sc.Type, fmt.Sprintf("%s:%d", dc.Name, idx), sc.Data)
			if err != nil {
				return nil, nil, fmt.Errorf("make source failed, dict:%s, type:%s, err:%w", dc.Name, sc.Type, err)
			}
			srcs = append(srcs, src)
		}
		d, err := dictionary.New(ctx, dc.Name, dc.MaxDistance, srcs...)
		if err != nil {
			return nil, nil, err
		}
		dicts = append(dicts, d)
		if dc.Watch {
			watched = append(watched, d)
		}
	}
	set, err := dictionary.NewSet(dicts...)
	if err != nil {
		return nil, nil, err
	}
	return set, watched, nil
}
