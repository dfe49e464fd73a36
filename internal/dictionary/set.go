package dictionary

import (
	"fmt"
	"sort"
)

// Set is an immutable collection of dictionaries addressed by name.
type Set struct {
	dicts map[string]*Dictionary
	names []string
}

func NewSet(dicts ...*Dictionary) (*Set, error) {
	s := &Set{dicts: make(map[string]*Dictionary, len(dicts))}
	for _, d := range dicts {
		if _, ok := s.dicts[d.Name()]; ok {
			return nil, fmt.Errorf("duplicate dictionary name:%s", d.Name())
		}
		s.dicts[d.Name()] = d
		s.names = append(s.names, d.Name())
	}
	sort.Strings(s.names)
	return s, nil
}

func (s *Set) Get(name string) (*Dictionary, bool) {
	d, ok := s.dicts[name]
	return d, ok
}

// Names returns dictionary names in sorted order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Set) List() []*Dictionary {
	out := make([]*Dictionary, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.dicts[name])
	}
	return out
}

func (s *Set) Len() int {
	return len(s.names)
}
