package cache

import (
	"fmt"
	"time"
)

const (
	// DefaultTTL is how long a timezone lookup is reused before it is loaded again.
	DefaultTTL = time.Hour

	// DefaultMaxEntries bounds the number of cached timezone names.
	DefaultMaxEntries = 1024
)

// Option defines a functional option for configuring Cache.
type Option func(*Options) error

// Options contains optional configuration for the cache.
type Options struct {
	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// maxEntries bounds the number of cached names.
	maxEntries int

	// enabled determines if caching is enabled.
	enabled bool
}

func NewOptions(opts ...Option) (Options, error) {
	// Default options.
	o := Options{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		enabled:    true,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("TTL must be positive, got %v", ttl)
		}
		o.ttl = ttl
		return nil
	}
}

// WithMaxEntries sets the maximum number of cached names.
func WithMaxEntries(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("max entries must be positive, got %d", n)
		}
		o.maxEntries = n
		return nil
	}
}

// WithCaching configures whether caching is enabled.
func WithCaching(enabled bool) Option {
	return func(o *Options) error {
		o.enabled = enabled
		return nil
	}
}
