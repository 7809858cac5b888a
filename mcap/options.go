package mcap

import (
	"github.com/wkalt/ros2dyn/cdr"
	"github.com/wkalt/ros2dyn/resolver"
)

type config struct {
	topics     map[string]bool
	start      uint64
	end        uint64
	registry   resolver.Registry
	cdrOptions []cdr.Option
	skipErrors bool
	onGraph    func(*resolver.Graph) error
}

// Option configures message decoding and reading.
type Option func(*config)

// WithTopics restricts reading to the given topics.
func WithTopics(topics ...string) Option {
	return func(c *config) {
		if c.topics == nil {
			c.topics = make(map[string]bool)
		}
		for _, topic := range topics {
			c.topics[topic] = true
		}
	}
}

// WithTimeRange restricts reading to messages with log times in
// [start, end). An end of zero is unbounded.
func WithTimeRange(start, end uint64) Option {
	return func(c *config) {
		c.start = start
		c.end = end
	}
}

// WithRegistry supplies definitions missing from a schema record's bundle.
// Definitions in the bundle take precedence.
func WithRegistry(registry resolver.Registry) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithDecodeOptions passes options to the CDR decoder.
func WithDecodeOptions(opts ...cdr.Option) Option {
	return func(c *config) {
		c.cdrOptions = append(c.cdrOptions, opts...)
	}
}

// WithSkipUndecodable logs and skips messages that fail to decode instead of
// failing the read.
func WithSkipUndecodable() Option {
	return func(c *config) {
		c.skipErrors = true
	}
}

// WithGraphCallback registers a function called once for each distinct
// schema, after its dependency graph is resolved.
func WithGraphCallback(f func(*resolver.Graph) error) Option {
	return func(c *config) {
		c.onGraph = f
	}
}

func buildConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
