package dnsfilter

import "time"

// Option configures the DNS filter server.
type Option func(*options)

type options struct {
	bind     string
	filter   *Filter
	upstream IUpstream
	rcode    int
	timeout  time.Duration
}

// WithBind configures the bind address.
func WithBind(bind string) Option {
	return func(o *options) {
		o.bind = bind
	}
}

func WithFilter(f *Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

func WithUpstream(u IUpstream) Option {
	return func(o *options) {
		o.upstream = u
	}
}

// WithRcode sets the rcode returned for blocked names.
func WithRcode(rcode int) Option {
	return func(o *options) {
		o.rcode = rcode
	}
}

// WithTimeout bounds a single upstream exchange.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}
