package server

import (
	"time"

	"github.com/xxxsen/fuzzyac/internal/dictionary"
)

// Option configures the HTTP server.
type Option func(*options)

type options struct {
	bind    string
	set     *dictionary.Set
	timeout time.Duration
}

// WithBind configures the bind address.
func WithBind(bind string) Option {
	return func(o *options) {
		o.bind = bind
	}
}

func WithDictionarySet(set *dictionary.Set) Option {
	return func(o *options) {
		o.set = set
	}
}

// WithSearchTimeout bounds a single search request.
func WithSearchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}
