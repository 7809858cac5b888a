package cdr

/*
Options for the CDR decoder.
*/

////////////////////////////////////////////////////////////////////////////////

type config struct {
	maxSequenceLength   int
	strictTrailingBytes bool
}

// Option is a function that modifies the decoder configuration.
type Option func(*config)

// WithMaxSequenceLength sets an upper limit on sequence length prefixes,
// applied in addition to any bound declared in the schema. Length prefixes
// above the limit fail with SequenceLengthError before any element is read.
// Zero, the default, means no limit.
func WithMaxSequenceLength(n int) Option {
	return func(c *config) {
		c.maxSequenceLength = n
	}
}

// WithStrictTrailingBytes causes decoding to fail with TrailingBytesError if
// anything other than final alignment padding remains after the root
// message. By default trailing bytes are ignored.
func WithStrictTrailingBytes() Option {
	return func(c *config) {
		c.strictTrailingBytes = true
	}
}
