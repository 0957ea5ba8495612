package s14e

// DefaultMaxDepth is the default nesting limit for encoding and decoding.
const DefaultMaxDepth = 1000

// DefaultMaxByteLength is the default limit on a decoded ArrayBuffer and on
// the decompressed size of a compressed payload (256 MiB). It keeps a
// crafted header from allocating without bound.
const DefaultMaxByteLength = 256 << 20

type config struct {
	compress      bool
	threshold     int
	hasThreshold  bool
	maxDepth      int
	maxByteLength int
	logger        Logger
}

func newConfig(opts []Option) *config {
	c := &config{
		maxDepth:      DefaultMaxDepth,
		maxByteLength: DefaultMaxByteLength,
		logger:        NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures Serialize and Deserialize.
type Option func(*config)

// WithCompress makes Serialize also try the LZ4-compressed form and keep
// it when it is shorter.
func WithCompress() Option {
	return func(c *config) {
		c.compress = true
	}
}

// WithCompressThreshold skips compression for output shorter than n
// UTF-16 code units. It has no effect without WithCompress.
func WithCompressThreshold(n int) Option {
	return func(c *config) {
		c.threshold = n
		c.hasThreshold = true
	}
}

// WithMaxDepth sets the maximum nesting depth (default 1000). Zero or less
// disables the limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxByteLength sets the largest ArrayBuffer and decompressed payload
// Deserialize accepts (default 256 MiB).
func WithMaxByteLength(n int) Option {
	return func(c *config) {
		c.maxByteLength = n
	}
}

// WithLogger sets the logger for diagnostics (default: discard).
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// shouldCompress reports whether a plain output of n UTF-16 units is worth
// compressing.
func (c *config) shouldCompress(n int) bool {
	return c.compress && (!c.hasThreshold || c.threshold <= n)
}
