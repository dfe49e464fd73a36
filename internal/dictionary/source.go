package dictionary

import (
	"context"
	"fmt"
)

// ISource supplies keywords to a dictionary.
type ISource interface {
	Name() string
	Type() string
	Keywords(ctx context.Context) ([]string, error)
	// Files lists the local files the keywords are read from, if any.
	Files() []string
}

type Factory func(name string, args interface{}) (ISource, error)

var m = make(map[string]Factory)

func Register(typ string, fac Factory) {
	m[typ] = fac
}

func MakeSource(typ string, name string, args interface{}) (ISource, error) {
	cr, ok := m[typ]
	if !ok {
		return nil, fmt.Errorf("source type:%s not found", typ)
	}
	return cr(name, args)
}
