package automaton

// Option configures an Automaton at construction time.
type Option func(*options)

type options struct {
	maxDistance int
}

// WithDefaultMaxDistance sets the edit distance used by Search when no
// WithMaxDistance is given.
func WithDefaultMaxDistance(d int) Option {
	return func(o *options) {
		o.maxDistance = d
	}
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	maxDistance int
}

func WithMaxDistance(d int) SearchOption {
	return func(o *searchOptions) {
		o.maxDistance = d
	}
}
